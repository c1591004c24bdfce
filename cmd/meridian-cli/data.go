package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meridian-cloud/meridian"
	"github.com/meridian-cloud/meridian/internal/domain"
	"github.com/meridian-cloud/meridian/internal/export"
	"github.com/meridian-cloud/meridian/internal/reply"
)

var execCmd = &cobra.Command{
	Use:   "exec <command line>",
	Short: "Run one raw command and print the JSON reply",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		line := strings.Join(args, " ")
		ctx, cancel := commandContext()
		defer cancel()

		if flagGateway != "" {
			client, err := newGateway()
			if err != nil {
				return err
			}
			raw, err := client.Execute(ctx, line)
			if raw != nil {
				fmt.Println(string(raw))
			}
			return err
		}

		sdk, err := newSDK(ctx)
		if err != nil {
			return err
		}
		defer sdk.Close()

		raw, err := sdk.Execute(ctx, line)
		if raw != nil {
			fmt.Println(string(raw))
		}
		return err
	},
}

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "List collections with object counts and memory use",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		sdk, err := newSDK(ctx)
		if err != nil {
			return err
		}
		defer sdk.Close()

		infos, err := sdk.Collections().List(ctx)
		if err != nil {
			return err
		}
		for _, info := range infos {
			fmt.Printf("%s\tobjects=%d\tmemory=%dB\n", info.Key, info.NumObjects, info.InMemorySize)
		}
		return nil
	},
}

var flagScanLimit int

var scanCmd = &cobra.Command{
	Use:   "scan <collection>",
	Short: "List a collection's objects",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		sdk, err := newSDK(ctx)
		if err != nil {
			return err
		}
		defer sdk.Close()

		objs, err := sdk.Objects(args[0]).Scan(ctx, meridian.Limit(flagScanLimit))
		if err != nil {
			return err
		}
		for _, obj := range objs {
			fmt.Printf("%s\t%s\n", obj.ID, string(obj.Geometry))
		}
		return nil
	},
}

var hooksCmd = &cobra.Command{
	Use:   "hooks",
	Short: "Manage geofence webhooks",
}

var hooksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered webhooks",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		sdk, err := newSDK(ctx)
		if err != nil {
			return err
		}
		defer sdk.Close()

		hooks, err := sdk.Hooks().List(ctx)
		if err != nil {
			return err
		}
		for _, h := range hooks {
			detect := "any"
			if len(h.Detect) > 0 {
				parts := make([]string, len(h.Detect))
				for i, e := range h.Detect {
					parts[i] = string(e)
				}
				detect = strings.Join(parts, ",")
			}
			fmt.Printf("%s\tcollection=%s\tfence=%s\tdetect=%s\tarea=%s\tendpoints=%s\n",
				h.Name, h.Collection, h.Fence, detect, h.Area,
				strings.Join(h.Endpoints, ","))
		}
		return nil
	},
}

var hooksDelCmd = &cobra.Command{
	Use:   "del <name>",
	Short: "Delete a webhook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		sdk, err := newSDK(ctx)
		if err != nil {
			return err
		}
		defer sdk.Close()

		return sdk.Hooks().Delete(ctx, args[0])
	},
}

var flagExportOut string

var exportCmd = &cobra.Command{
	Use:   "export <collection>",
	Short: "Export a collection as KML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		sdk, err := newSDK(ctx)
		if err != nil {
			return err
		}
		defer sdk.Close()

		objs, err := sdk.Objects(args[0]).Scan(ctx)
		if err != nil {
			return err
		}

		out := os.Stdout
		if flagExportOut != "" {
			f, err := os.Create(flagExportOut)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		return export.WriteKML(out, args[0], toReplyObjects(objs), zap.NewNop())
	},
}

func toReplyObjects(objs []meridian.Object) []reply.Object {
	out := make([]reply.Object, 0, len(objs))
	for _, o := range objs {
		converted := reply.Object{ID: o.ID, Geometry: o.Geometry}
		for name, value := range o.Fields {
			converted.Fields = append(converted.Fields, domain.Field{Name: name, Value: value})
		}
		out = append(out, converted)
	}
	return out
}

func init() {
	scanCmd.Flags().IntVar(&flagScanLimit, "limit", 100, "max objects to list")
	exportCmd.Flags().StringVarP(&flagExportOut, "out", "o", "", "output file (default stdout)")
	hooksCmd.AddCommand(hooksListCmd, hooksDelCmd)
}
