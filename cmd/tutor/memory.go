package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ai-english-tutor/server/internal/tutor/memory"
)

func newMemoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Back up, restore or clear your learning profile",
	}
	cmd.AddCommand(newMemoryExportCmd(a), newMemoryImportCmd(a), newMemoryClearCmd(a))
	return cmd
}

func newMemoryExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write the profile as JSON to file, or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, mem, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			data, err := mem.Export(cmd.Context())
			if err != nil {
				return err
			}
			raw, err := json.MarshalIndent(data, "", "  ")
			if err != nil {
				return err
			}
			if len(args) == 0 {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(raw))
				return err
			}
			return os.WriteFile(args[0], raw, 0o600)
		},
	}
}

func newMemoryImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Restore a profile written by export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var data memory.Export
			if err := json.Unmarshal(raw, &data); err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			_, mem, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			if err := mem.Import(cmd.Context(), &data); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Profile imported.")
			return nil
		},
	}
}

func newMemoryClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the profile and conversation log",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, mem, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			if err := mem.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Profile cleared.")
			return nil
		},
	}
}
