package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/joseph-ayodele/xltables/internal/server"
)

var (
	callAddr    string
	callTimeout time.Duration
)

var callCmd = &cobra.Command{
	Use:   "call <method> [key=value | key:=json ...]",
	Short: "Call a TablesService method on a running server",
	Long: `Call a xltables.v1.TablesService method and print the response.

Arguments are request fields: key=value sends a string, key:=value sends raw
JSON (numbers, booleans, lists).

Examples:
  xltables call ListTables
  xltables call RowSum table="operating cashflows" row=revenue
  xltables call ListIngestions limit:=5 -o json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := parseFields(args[1:])
		if err != nil {
			return err
		}
		resp, err := invoke(cmd.Context(), args[0], req)
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), outputFormat, resp)
	},
}

var uploadCmd = &cobra.Command{
	Use:   "upload <workbook>",
	Short: "Upload a workbook to a running server, replacing its tables",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}
		resp, err := invoke(cmd.Context(), "UploadWorkbook", map[string]any{
			"filename": filepath.Base(args[0]),
			"content":  base64.StdEncoding.EncodeToString(data),
		})
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), outputFormat, resp)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <out.xlsx>",
	Short: "Download the server's current tables as a workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := invoke(cmd.Context(), "ExportTables", nil)
		if err != nil {
			return err
		}
		encoded, _ := resp["xlsx"].(string)
		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return fmt.Errorf("decode export: %w", err)
		}
		if err := os.WriteFile(args[0], data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", args[0], err)
		}
		logger.Info("export.saved", "path", args[0], "bytes", len(data))
		return nil
	},
}

func invoke(ctx context.Context, method string, req map[string]any) (map[string]any, error) {
	addr := callAddr
	if addr == "" {
		addr = cfg.Server.GRPCAddr
	}
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	defer func() { _ = conn.Close() }()

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	ctx = metadata.AppendToOutgoingContext(ctx, server.RequestIDHeader, "cli-"+method+"-"+time.Now().UTC().Format("150405.000"))
	return server.NewClient(conn).Call(ctx, method, req)
}

// parseFields turns key=value and key:=json arguments into a request document.
func parseFields(args []string) (map[string]any, error) {
	out := make(map[string]any, len(args))
	for _, a := range args {
		if k, v, ok := strings.Cut(a, ":="); ok && !strings.Contains(k, "=") {
			var val any
			if err := json.Unmarshal([]byte(v), &val); err != nil {
				return nil, fmt.Errorf("field %s: invalid JSON %q: %w", k, v, err)
			}
			out[k] = val
			continue
		}
		k, v, ok := strings.Cut(a, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("field %q: expected key=value or key:=json", a)
		}
		out[k] = v
	}
	return out, nil
}

func init() {
	for _, c := range []*cobra.Command{callCmd, uploadCmd, exportCmd} {
		c.Flags().StringVar(&callAddr, "addr", "", "server address (default: server.grpc_addr)")
		c.Flags().DurationVar(&callTimeout, "timeout", 30*time.Second, "request timeout")
		rootCmd.AddCommand(c)
	}
}
