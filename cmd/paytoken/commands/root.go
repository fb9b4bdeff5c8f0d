package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"regexp"
	"syscall"

	"github.com/spf13/cobra"

	paymentdata "github.com/paymentdata/client-go"
	"github.com/paymentdata/client-go/internal/config"
)

// Streams are the standard streams a command reads and writes.
type Streams struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultStreams returns the process streams.
func DefaultStreams() Streams {
	return Streams{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

type globals struct {
	streams Streams

	configPath      string
	recipientID     string
	privateKeys     []string
	test            bool
	keyDirectoryURL string
	verbose         bool

	cfg    config.Config
	logger *slog.Logger
}

var hexKey = regexp.MustCompile(`^[0-9a-fA-F]{64}$`)

// Execute runs the CLI with the process arguments until completion or an
// interrupt signal.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	streams := DefaultStreams()
	if err := NewRootCmd(streams).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(streams.Stderr, "paytoken: %v\n", err)
		return err
	}
	return nil
}

// NewRootCmd builds the command tree.
func NewRootCmd(streams Streams) *cobra.Command {
	g := &globals{streams: streams}

	root := &cobra.Command{
		Use:           "paytoken",
		Short:         "Verify and decrypt Google Pay payment method tokens",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.load(cmd)
		},
	}
	root.SetIn(streams.Stdin)
	root.SetOut(streams.Stdout)
	root.SetErr(streams.Stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&g.configPath, "config", "", "config file (default paytoken.yaml or configs/paytoken.yaml)")
	flags.StringVar(&g.recipientID, "recipient-id", "", "recipient ID, e.g. merchant:12345")
	flags.StringArrayVar(&g.privateKeys, "private-key", nil, "recipient private key, base64 PKCS#8 or hex scalar (repeatable)")
	flags.BoolVar(&g.test, "test", false, "use the test signing keys")
	flags.StringVar(&g.keyDirectoryURL, "key-directory-url", "", "override the signing key directory URL")
	flags.BoolVarP(&g.verbose, "verbose", "v", false, "debug logging to stderr")

	root.AddCommand(unsealCmd(g), prefetchCmd(g))
	return root
}

func (g *globals) load(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("recipient-id") {
		cfg.RecipientID = g.recipientID
	}
	if flags.Changed("private-key") {
		cfg.PrivateKeys = g.privateKeys
	}
	if flags.Changed("test") && g.test {
		cfg.Environment = config.EnvironmentTest
	}
	if flags.Changed("key-directory-url") {
		cfg.KeyDirectoryURL = g.keyDirectoryURL
	}
	if g.verbose {
		cfg.LogLevel = "debug"
	}

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	g.cfg = cfg
	g.logger = slog.New(slog.NewTextHandler(g.streams.Stderr, &slog.HandlerOptions{Level: level}))
	return nil
}

// recipient builds a Recipient from the loaded settings. Private keys are
// only required when withKeys is set.
func (g *globals) recipient(withKeys bool) (*paymentdata.Recipient, error) {
	if withKeys {
		if err := g.cfg.Validate(); err != nil {
			return nil, err
		}
	}

	opts, err := g.cfg.RecipientOptions(g.logger)
	if err != nil {
		return nil, err
	}
	r, err := paymentdata.New(g.cfg.RecipientID, opts...)
	if err != nil {
		return nil, err
	}

	if !withKeys {
		return r, nil
	}
	for i, key := range g.cfg.PrivateKeys {
		add := r.AddPrivateKey
		if hexKey.MatchString(key) {
			add = r.AddPrivateKeyHex
		}
		if err := add(key); err != nil {
			return nil, fmt.Errorf("private key %d: %w", i+1, err)
		}
	}
	return r, nil
}
