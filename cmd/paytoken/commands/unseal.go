package commands

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func unsealCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unseal [token-file|-]",
		Short: "Verify and decrypt a payment token",
		Long: "Reads a payment method token from the given file, or stdin when the\n" +
			"argument is missing or \"-\", and prints the decrypted payload.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := readToken(g.streams.Stdin, args)
			if err != nil {
				return err
			}

			r, err := g.recipient(true)
			if err != nil {
				return err
			}

			plaintext, err := r.Unseal(cmd.Context(), token)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(g.streams.Stdout, plaintext)
			return err
		},
	}
	return cmd
}

func readToken(stdin io.Reader, args []string) (string, error) {
	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return "", errors.New("read token: empty input")
	}
	return string(data), nil
}
