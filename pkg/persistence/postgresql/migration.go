package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Create conversions table
			CREATE TABLE conversions (
				id UUID PRIMARY KEY,
				direction VARCHAR(20) NOT NULL CHECK (direction IN ('fsr-to-fas', 'fas-to-fsr')),
				status VARCHAR(20) NOT NULL CHECK (status IN ('succeeded', 'failed')),
				collections INT NOT NULL DEFAULT 0,
				items INT NOT NULL DEFAULT 0,
				summary JSONB,
				error_message TEXT,
				output JSONB,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_conversions_direction ON conversions(direction);
			CREATE INDEX idx_conversions_status ON conversions(status);
			CREATE INDEX idx_conversions_created_at ON conversions(created_at);
		`,
		2: `
			-- Replaced-step totals, queryable without decoding the summary
			ALTER TABLE conversions
				ADD COLUMN replaced_steps INT NOT NULL DEFAULT 0;

			UPDATE conversions
			SET replaced_steps =
				COALESCE((summary->>'totalUnsupportedSteps')::INT, 0) +
				COALESCE((summary->>'totalUnknownSteps')::INT, 0) +
				COALESCE((summary->>'totalManualStartsConverted')::INT, 0)
			WHERE summary IS NOT NULL;
		`,
	}
}
