package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"skyline/opsboard/internal/auth"
	"skyline/opsboard/internal/common"
	"skyline/opsboard/internal/config"
	"skyline/opsboard/internal/constants"
	"skyline/opsboard/internal/db"
	"skyline/opsboard/internal/logging"
	"skyline/opsboard/internal/metrics"
	"skyline/opsboard/internal/parsers"
	"skyline/opsboard/internal/services"
)

type importOptions struct {
	kind     string
	file     string
	format   string
	mode     string
	source   string
	override bool
	user     string
}

func (o *importOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.kind, "kind", "", "Entity kind: customer or aircraft (required)")
	cmd.Flags().StringVar(&o.file, "file", "", "Path of the csv, json or xlsx file (required)")
	cmd.Flags().StringVar(&o.format, "format", "", "Payload format (default: from the file extension)")
	cmd.Flags().StringVar(&o.mode, "mode", "", "Conflict mode: allow, warn or reject (default: CONFLICT_MODE)")
	cmd.Flags().StringVar(&o.source, "default-source", "", "Trust tier for rows without a source column: imported or confirmed")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("file")
}

// input turns the flags into a service call.
func (o *importOptions) input() (services.ImportInput, error) {
	kind, ok := constants.ParseEntityKind(strings.ToLower(o.kind))
	if !ok {
		return services.ImportInput{}, fmt.Errorf("%w: %q", services.ErrUnknownKind, o.kind)
	}

	format := constants.Format(strings.ToLower(o.format))
	if format == "" {
		if format, ok = parsers.FormatFromFileName(o.file); !ok {
			return services.ImportInput{}, fmt.Errorf("%w: cannot infer format of %s, pass --format", services.ErrUnsupportedFormat, o.file)
		}
	}

	var mode constants.ConflictMode
	if o.mode != "" {
		if mode, ok = constants.ParseConflictMode(strings.ToLower(o.mode)); !ok {
			return services.ImportInput{}, fmt.Errorf("unknown --mode %q, expected allow, warn or reject", o.mode)
		}
	}
	source := constants.TrustSource(strings.ToLower(o.source))
	if source != "" && !source.Importable() {
		return services.ImportInput{}, fmt.Errorf("unknown --default-source %q, expected imported or confirmed", o.source)
	}

	content, err := os.ReadFile(o.file)
	if err != nil {
		return services.ImportInput{}, err
	}

	fileName := o.file
	return services.ImportInput{
		Kind:              kind,
		Format:            format,
		Content:           content,
		ConflictMode:      mode,
		DefaultSource:     source,
		Channel:           constants.ChannelFile,
		FileName:          &fileName,
		UserID:            (&auth.CLIClaims{UserName: o.user}).UserID(),
		OverrideConflicts: o.override,
	}, nil
}

func newValidateCmd() *cobra.Command {
	var opts importOptions
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a file against the current store without writing",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := opts.input()
			if err != nil {
				return err
			}
			env, err := openEnv()
			if err != nil {
				return err
			}
			defer env.close()

			res, err := env.imports.Validate(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printJSON(res)
		},
	}
	opts.register(cmd)
	return cmd
}

func newCommitCmd() *cobra.Command {
	var opts importOptions
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Validate a file and apply it in one transaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := opts.input()
			if err != nil {
				return err
			}
			env, err := openEnv()
			if err != nil {
				return err
			}
			defer env.close()

			res, err := env.imports.Commit(cmd.Context(), in)
			if res != nil {
				if perr := printJSON(res); perr != nil {
					return perr
				}
			}
			return err
		},
	}
	opts.register(cmd)
	cmd.Flags().BoolVar(&opts.override, "override", false, "Apply the valid rows even when the batch has errors")
	cmd.Flags().StringVar(&opts.user, "user", os.Getenv("USER"), "User id recorded on the audit row")
	return cmd
}

func newRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage aircraft type mapping rules",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "reset",
			Short: "Replace every mapping rule with the bundled defaults",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withRules(cmd.Context(), func(ctx context.Context, svc *services.MappingRuleService) (any, error) {
					n, err := svc.ResetToDefaults(ctx)
					return map[string]int{"rules": n}, err
				})
			},
		},
		&cobra.Command{
			Use:   "backfill",
			Short: "Recompute the canonical type of every stored aircraft",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withRules(cmd.Context(), func(ctx context.Context, svc *services.MappingRuleService) (any, error) {
					scanned, changed, err := svc.Backfill(ctx)
					return map[string]int{"scanned": scanned, "changed": changed}, err
				})
			},
		},
		&cobra.Command{
			Use:   "canonicalize RAW [REGISTRATION]",
			Short: "Show which family a raw aircraft type maps to",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				registration := ""
				if len(args) == 2 {
					registration = args[1]
				}
				return withRules(cmd.Context(), func(ctx context.Context, svc *services.MappingRuleService) (any, error) {
					return svc.Canonicalize(ctx, args[0], registration)
				})
			},
		},
	)
	return cmd
}

func withRules(ctx context.Context, fn func(context.Context, *services.MappingRuleService) (any, error)) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.close()

	out, err := fn(ctx, env.rules)
	if err != nil {
		return err
	}
	return printJSON(out)
}

// cliEnv is the service graph a single CLI invocation works against.
type cliEnv struct {
	imports *services.ImportService
	rules   *services.MappingRuleService
	cache   common.CacheInterface
}

func openEnv() (*cliEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := logging.Init(cfg.AppEnv); err != nil {
		return nil, err
	}

	orm, err := db.InitORM(&cfg)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(orm); err != nil {
		return nil, err
	}

	// A private registry keeps the CLI's counters out of any global state.
	m := metrics.NewMetricsRegistry(prometheus.NewRegistry())
	cache := common.NewCache(&cfg)
	rules := services.NewMappingRuleService(orm, cache, &cfg, m)
	return &cliEnv{
		imports: services.NewImportService(orm, rules, &cfg, m),
		rules:   rules,
		cache:   cache,
	}, nil
}

func (e *cliEnv) close() {
	if err := e.cache.Close(); err != nil {
		logging.Warn("Failed to close cache", "error", err)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
