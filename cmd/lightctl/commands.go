package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/phanxgames/lighttool"
	"github.com/phanxgames/lighttool/memscene"
)

// options holds the flags shared by every subcommand.
type options struct {
	registryPath string
	verbose      bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "lightctl",
		Short:         "Inspect and replay light handle edits",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.registryPath, "registry", "", "light metadata registry file (.yaml, .yml or .toml)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log tool settle passes to stderr")

	root.AddCommand(newAnglesCmd(), newReplayCmd(opts), newRegistryCmd(opts))
	return root
}

func (o *options) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (o *options) loadRegistry(logger *slog.Logger) (*lighttool.Registry, error) {
	if o.registryPath == "" {
		return nil, fmt.Errorf("--registry is required")
	}
	reg := lighttool.NewRegistry()
	reg.SetLogger(logger)
	if err := reg.LoadFile(o.registryPath); err != nil {
		return nil, err
	}
	return reg, nil
}

// --- angles ---

func newAnglesCmd() *cobra.Command {
	var (
		penumbraType string
		multiplier   float64
	)
	cmd := &cobra.Command{
		Use:   "angles <coneAngle> [penumbraAngle]",
		Short: "Print the handle and drawn angles for spot light parameters",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			conv, ok := lighttool.ParsePenumbraType(penumbraType)
			if !ok {
				return fmt.Errorf("unknown penumbra type %q", penumbraType)
			}
			cone, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("cone angle: %w", err)
			}
			var penumbra *float64
			if len(args) == 2 {
				p, err := strconv.ParseFloat(args[1], 64)
				if err != nil {
					return fmt.Errorf("penumbra angle: %w", err)
				}
				penumbra = &p
			}
			printAngles(cmd.OutOrStdout(), cone, penumbra, conv, multiplier)
			return nil
		},
	}
	cmd.Flags().StringVar(&penumbraType, "type", "inset", "penumbra convention: inset, outset, absolute or none")
	cmd.Flags().Float64Var(&multiplier, "multiplier", 1, "cone angle multiplier; 2 for half-angle shaders")
	return cmd
}

func printAngles(w io.Writer, cone float64, penumbra *float64, conv lighttool.PenumbraType, multiplier float64) {
	coneHandle, penumbraHandle := lighttool.HandleAngles(cone, penumbra, conv, multiplier)
	inner, outer := lighttool.VisualAngles(coneHandle, penumbraHandle, conv)
	fmt.Fprintf(w, "cone handle:     %g\n", coneHandle)
	if penumbraHandle != nil {
		fmt.Fprintf(w, "penumbra handle: %g\n", *penumbraHandle)
	}
	fmt.Fprintf(w, "inner:           %g\n", inner)
	fmt.Fprintf(w, "outer:           %g\n", outer)
}

// --- registry ---

func newRegistryCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Work with light metadata registries",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Print every registered target, key and value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := opts.loadRegistry(opts.logger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			dumpRegistry(cmd.OutOrStdout(), reg)
			return nil
		},
	})
	return cmd
}

func dumpRegistry(w io.Writer, reg *lighttool.Registry) {
	for _, target := range reg.Targets() {
		fmt.Fprintln(w, target)
		for _, key := range reg.Keys(target) {
			v, _ := reg.Value(target, key)
			fmt.Fprintf(w, "  %s = %v\n", key, v)
		}
	}
}

// --- replay ---

func newReplayCmd(opts *options) *cobra.Command {
	var (
		scenePath  string
		scriptPath string
		editScope  string
	)
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay an interaction script against a scene and print the resulting light parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := opts.logger(cmd.ErrOrStderr())
			reg, err := opts.loadRegistry(logger)
			if err != nil {
				return err
			}
			doc, err := memscene.LoadFile(scenePath)
			if err != nil {
				return err
			}
			script, err := os.ReadFile(scriptPath)
			if err != nil {
				return fmt.Errorf("read interaction script: %w", err)
			}
			return replay(cmd.Context(), cmd.OutOrStdout(), logger, replayInput{
				registry:  reg,
				doc:       doc,
				script:    script,
				editScope: editScope,
				debug:     opts.verbose,
			})
		},
	}
	cmd.Flags().StringVar(&scenePath, "scene", "", "YAML scene file")
	cmd.Flags().StringVar(&scriptPath, "script", "", "JSON interaction script")
	cmd.Flags().StringVar(&editScope, "edit-scope", "", "name of the edit scope to edit in")
	_ = cmd.MarkFlagRequired("scene")
	_ = cmd.MarkFlagRequired("script")
	return cmd
}

type replayInput struct {
	registry  *lighttool.Registry
	doc       *memscene.Document
	script    []byte
	editScope string
	debug     bool
}

func replay(ctx context.Context, w io.Writer, logger *slog.Logger, in replayInput) error {
	if ctx == nil {
		ctx = context.Background()
	}
	vc := lighttool.NewViewContext()
	vc.SetTime(in.doc.Frame)
	vc.SetSelectedPaths(in.doc.Selection)

	tool := lighttool.NewTool(lighttool.ToolConfig{
		Scene:    in.doc.Scene,
		Editor:   in.doc.Scene,
		Registry: in.registry,
		Context:  vc,
		Undo:     in.doc.Script,
		Logger:   logger,
	})
	defer tool.Close()
	tool.SetDebugMode(in.debug)
	tool.SetActive(true)

	if in.editScope != "" {
		es := findEditScope(in.doc.Scene, in.editScope)
		if es == nil {
			return fmt.Errorf("unknown edit scope %q", in.editScope)
		}
		tool.SetEditScope(es)
	}

	runner, err := lighttool.LoadInteractionScript(in.script, tool, vc, nil)
	if err != nil {
		return err
	}
	if err := runner.Run(ctx); err != nil {
		return err
	}
	fmt.Fprintf(w, "undo steps: %d\n", in.doc.Script.UndoCount())
	return printLights(ctx, w, in.doc.Scene, vc.Time())
}

func findEditScope(s *memscene.Scene, name string) *memscene.EditScope {
	for _, es := range s.EditScopes() {
		if es.Name() == name {
			return es
		}
	}
	return nil
}

// printLights prints the evaluated shader parameters of every light.
func printLights(ctx context.Context, w io.Writer, s *memscene.Scene, frame float64) error {
	for _, p := range s.Paths() {
		light := s.Light(p.String())
		if light == nil {
			continue
		}
		attrs, err := s.Attributes(ctx, lighttool.EvalContext{Path: p, Time: frame})
		if err != nil {
			return err
		}
		network, ok := attrs[light.Attribute()].(*lighttool.ShaderNetwork)
		if !ok || network.OutputShader() == nil {
			continue
		}
		params := network.OutputShader().Parameters
		names := make([]string, 0, len(params))
		for name := range params {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintln(w, p)
		for _, name := range names {
			fmt.Fprintf(w, "  %s = %v\n", name, params[name])
		}
	}
	return nil
}
