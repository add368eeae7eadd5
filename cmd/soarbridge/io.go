package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	cli "github.com/urfave/cli/v3"
)

func inputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "input",
		Aliases: []string{"i"},
		Usage:   "Export file to read, - for stdin",
		Value:   "-",
	}
}

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "File to write, - for stdout",
		Value:   "-",
	}
}

func readInput(command *cli.Command) ([]byte, error) {
	path := command.String("input")
	if path == "-" || path == "" {
		reader := command.Root().Reader
		if reader == nil {
			reader = os.Stdin
		}

		return io.ReadAll(reader)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return data, nil
}

func writeOutput(command *cli.Command, data []byte) error {
	path := command.String("output")
	if path == "-" || path == "" {
		_, err := stdout(command).Write(append(data, '\n'))

		return err
	}

	err := os.WriteFile(path, data, 0600)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

func writeJSON(command *cli.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	return writeOutput(command, data)
}

func stdout(command *cli.Command) io.Writer {
	if w := command.Root().Writer; w != nil {
		return w
	}

	return os.Stdout
}

func stderr(command *cli.Command) io.Writer {
	if w := command.Root().ErrWriter; w != nil {
		return w
	}

	return os.Stderr
}
