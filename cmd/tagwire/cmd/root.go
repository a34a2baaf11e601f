package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rawbytedev/tagwire"
	"github.com/rawbytedev/tagwire/pkg/config"
	"github.com/rawbytedev/tagwire/pkg/schemafile"
)

// WireFormat identifies the tag table this build reads and writes.
const WireFormat = "1"

// fieldSpecs are the recognized configuration fields. Flags of the same
// name override the file and the environment.
var fieldSpecs = map[string]config.FieldSpec{
	"log_level":    {Default: "info", Mode: config.ModeWrite, Env: "TAGWIRE_LOG_LEVEL", Pattern: `^(debug|info|warn|error)$`},
	"key_policy":   {Default: "reject", Mode: config.ModeWrite, Env: "TAGWIRE_KEY_POLICY", Pattern: `^(reject|drop)$`},
	"width_policy": {Default: "fail", Mode: config.ModeWrite, Env: "TAGWIRE_WIDTH_POLICY", Pattern: `^(fail|truncate)$`},
	"schema":       {Mode: config.ModeAppend, Env: "TAGWIRE_SCHEMA"},
	"max_depth":    {Default: strconv.Itoa(tagwire.DefaultMaxDepth), Mode: config.ModeReadOnly, Env: "TAGWIRE_MAX_DEPTH", Pattern: `^[1-9][0-9]*$`},
	"wire_format":  {Default: WireFormat, Mode: config.ModeImmutable},
}

// app is the state shared by every subcommand once the root has parsed
// its persistent flags.
type app struct {
	cfg    *config.Config
	log    *slog.Logger
	schema tagwire.Schema
	codec  *tagwire.Codec
}

// Execute runs the CLI against os.Args.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "tagwire",
		Short: "Encode, decode and inspect tagged binary values",
		Long: `tagwire converts JSON, YAML and CBOR documents to and from a compact
self-describing binary encoding. A YAML schema file can force field widths
and representations on encode.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	pf := root.PersistentFlags()
	pf.String("config", "", "YAML config file")
	pf.String("log-level", "", "log level: debug, info, warn or error")
	pf.String("key-policy", "", "invalid record keys: reject or drop")
	pf.String("width-policy", "", "values wider than declared: fail or truncate")
	pf.StringSlice("schema", nil, "schema file; may be repeated, later files override earlier fields")

	root.AddCommand(
		newEncodeCmd(a),
		newDecodeCmd(a),
		newInspectCmd(a),
		newSchemaCmd(a),
		newProfileCmd(a),
	)
	return root
}

var flagFields = map[string]string{
	"log-level":    "log_level",
	"key-policy":   "key_policy",
	"width-policy": "width_policy",
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.New(fieldSpecs, config.Environ(os.Environ()))
	if err != nil {
		return err
	}
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if err := cfg.Load(path); err != nil {
			return err
		}
	}
	for flag, field := range flagFields {
		if !cmd.Flags().Changed(flag) {
			continue
		}
		v, _ := cmd.Flags().GetString(flag)
		if err := cfg.Set(field, v); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("schema") {
		paths, _ := cmd.Flags().GetStringSlice("schema")
		for _, p := range paths {
			if err := cfg.Append("schema", p); err != nil {
				return err
			}
		}
	}
	a.cfg = cfg

	level, _ := cfg.Get("log_level")
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	a.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: lvl}))

	if err := a.loadSchema(); err != nil {
		return err
	}
	return a.buildCodec()
}

// loadSchema merges every configured schema file into one.
func (a *app) loadSchema() error {
	paths, _ := a.cfg.Values("schema")
	merged := tagwire.Schema{}
	for _, p := range paths {
		if p == "" {
			continue
		}
		s, err := schemafile.Load(p)
		if err != nil {
			return err
		}
		for k, f := range s {
			merged[k] = f
		}
		a.log.Debug("loaded schema", "path", p, "fields", len(s))
	}
	a.schema = merged
	return nil
}

func (a *app) buildCodec() error {
	kp, _ := a.cfg.Get("key_policy")
	keyPolicy, err := tagwire.ParseKeyPolicy(kp)
	if err != nil {
		return err
	}
	wp, _ := a.cfg.Get("width_policy")
	widthPolicy, err := tagwire.ParseWidthPolicy(wp)
	if err != nil {
		return err
	}
	md, _ := a.cfg.Get("max_depth")
	maxDepth, err := strconv.Atoi(md)
	if err != nil {
		return fmt.Errorf("max_depth: %w", err)
	}
	a.codec, err = tagwire.NewCodec(a.schema, tagwire.Options{
		KeyPolicy:   keyPolicy,
		WidthPolicy: widthPolicy,
		MaxDepth:    maxDepth,
		Logger:      a.log,
	})
	if err != nil {
		return err
	}
	a.log.Debug("codec ready",
		"key_policy", keyPolicy.String(),
		"width_policy", widthPolicy.String(),
		"max_depth", maxDepth,
		"schema", a.schema.String())
	return nil
}
