package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mindmap/internal/client"
	"mindmap/internal/codec"
	"mindmap/internal/domain"
	"mindmap/internal/repository/sqlite"
	"mindmap/internal/service"
)

// store is the subset of map operations the inspection commands need. It
// is served by the HTTP client or, with --db, by a local service.
type store interface {
	Fetch(ctx context.Context, id string) (*domain.MindMap, error)
	ListByUser(ctx context.Context, userID int64, filter domain.ListFilter) ([]domain.MindMapSummary, error)
	Export(ctx context.Context, id, format string, w io.Writer) error
}

var (
	storeDB     string
	storeServer string

	listUser   int64
	listSearch string
	listWindow string

	exportFormat string
	exportOutput string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List a user's mind maps",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a mind map's metadata and content",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var exportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a mind map as JSON, YAML or Mermaid",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	for _, cmd := range []*cobra.Command{listCmd, showCmd, exportCmd} {
		cmd.Flags().StringVar(&storeDB, "db", "", "read a local SQLite database instead of the server")
		cmd.Flags().StringVar(&storeServer, "server", "", "server base URL (overrides client.base_url)")
	}

	listCmd.Flags().Int64Var(&listUser, "user", 0, "owner user id")
	listCmd.Flags().StringVar(&listSearch, "search", "", "case-insensitive title filter")
	listCmd.Flags().StringVar(&listWindow, "window", "", "updated within: all, 1day or 1week")
	_ = listCmd.MarkFlagRequired("user")

	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", codec.FormatJSON, "export format: json, yaml or mermaid")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to file instead of stdout")
}

// openStore connects to the configured server, or opens --db directly.
// The returned func releases whatever was opened.
func openStore() (store, *zap.Logger, func(), error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	if storeDB != "" {
		repo, err := sqlite.New(storeDB)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open database: %w", err)
		}
		svc := service.NewMindMapService(repo, service.NewEventBus(), logger.Named("service"))
		return svc, logger.Logger, func() {
			repo.Close()
			_ = logger.Sync()
		}, nil
	}

	if storeServer != "" {
		cfg.Client.BaseURL = storeServer
	}
	c := client.New(cfg.Client, logger.Named("client"))
	return c, logger.Logger, func() { _ = logger.Sync() }, nil
}

func runList(cmd *cobra.Command, args []string) error {
	filter := domain.ListFilter{Search: listSearch, Window: domain.TimeWindow(listWindow)}
	switch filter.Window {
	case "", domain.WindowAll, domain.WindowDay, domain.WindowWeek:
	default:
		return fmt.Errorf("unknown window %q (want all, 1day or 1week)", listWindow)
	}

	st, _, closeFn, err := openStore()
	if err != nil {
		return err
	}
	defer closeFn()

	maps, err := st.ListByUser(cmd.Context(), listUser, filter)
	if err != nil {
		return err
	}
	if len(maps) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No mind maps found.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tNODES\tEDGES\tUPDATED")
	for _, m := range maps {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n",
			m.ID, m.Title, m.NodeCount, m.EdgeCount, m.UpdatedAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}

func runShow(cmd *cobra.Command, args []string) error {
	st, _, closeFn, err := openStore()
	if err != nil {
		return err
	}
	defer closeFn()

	m, err := st.Fetch(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	nodes, edges := codec.CountElements(m.Content)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:      %s\n", m.ID)
	fmt.Fprintf(out, "Title:   %s\n", m.Title)
	fmt.Fprintf(out, "Owner:   %d\n", m.UserID)
	fmt.Fprintf(out, "Nodes:   %d\n", nodes)
	fmt.Fprintf(out, "Edges:   %d\n", edges)
	fmt.Fprintf(out, "Created: %s\n", m.CreatedAt.Local().Format(time.DateTime))
	fmt.Fprintf(out, "Updated: %s\n", m.UpdatedAt.Local().Format(time.DateTime))
	fmt.Fprintln(out)
	fmt.Fprintln(out, codec.Indent(m.Content))
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	exporter, err := codec.NewExporter(exportFormat)
	if err != nil {
		return err
	}

	st, logger, closeFn, err := openStore()
	if err != nil {
		return err
	}
	defer closeFn()

	var w io.Writer = cmd.OutOrStdout()
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := st.Export(cmd.Context(), args[0], exporter.Format(), w); err != nil {
		return err
	}
	if exportOutput != "" {
		logger.Info("exported mind map",
			zap.String("id", args[0]),
			zap.String("format", exporter.Format()),
			zap.String("path", exportOutput))
	}
	return nil
}
