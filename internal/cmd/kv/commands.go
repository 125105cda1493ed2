package kv

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rzbill/keysync/internal/namespace"
	"github.com/rzbill/keysync/internal/session"
)

// Handle is an opened engine plus its cleanup.
type Handle struct {
	Engine *session.Engine
	NS     namespace.Namespace
	Close  func()
}

// Factory opens the engine backing one CLI invocation.
type Factory func(ctx context.Context) (*Handle, error)

// NewGetCommand prints the current value for a key.
func NewGetCommand(open Factory) *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Print the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			h, err := open(ctx)
			if err != nil {
				return err
			}
			defer h.Close()
			s, err := h.Engine.Acquire(ctx, args[0], nil, h.NS, session.AcquireOptions{})
			if err != nil {
				return err
			}
			defer s.Close()
			select {
			case <-s.Ready():
			case <-ctx.Done():
				return ctx.Err()
			}
			return printValue(cmd, s.Value())
		},
	}
}

// NewSetCommand writes a value and waits for durable confirmation.
func NewSetCommand(open Factory) *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Write a value for a key (VALUE is JSON, or a raw string)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			h, err := open(ctx)
			if err != nil {
				return err
			}
			defer h.Close()
			s, err := h.Engine.Acquire(ctx, args[0], nil, h.NS, session.AcquireOptions{})
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.Set(parseValue(args[1])); err != nil {
				return err
			}
			return s.Flush(ctx)
		},
	}
}

// NewDelCommand removes a key from the durable store.
func NewDelCommand(open Factory) *cobra.Command {
	return &cobra.Command{
		Use:     "del KEY",
		Short:   "Remove a key",
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			h, err := open(ctx)
			if err != nil {
				return err
			}
			defer h.Close()
			return h.Engine.RemoveKey(ctx, args[0], h.NS)
		},
	}
}

// NewWatchCommand streams confirmed changes for a key until interrupted.
func NewWatchCommand(open Factory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch KEY",
		Short: "Stream confirmed changes for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			filter, _ := cmd.Flags().GetString("filter")
			h, err := open(ctx)
			if err != nil {
				return err
			}
			defer h.Close()
			s, err := h.Engine.Acquire(ctx, args[0], nil, h.NS, session.AcquireOptions{
				Filter: filter,
				OnChange: func(v interface{}) {
					_ = printValue(cmd, v)
				},
			})
			if err != nil {
				return err
			}
			defer s.Close()
			select {
			case <-s.Ready():
			case <-ctx.Done():
				return ctx.Err()
			}
			if err := printValue(cmd, s.Value()); err != nil {
				return err
			}
			<-ctx.Done()
			return nil
		},
	}
	cmd.Flags().String("filter", "", "CEL expression gating events (variables: key, value, removed, now_ms)")
	return cmd
}

// parseValue decodes raw as JSON; anything undecodable is a raw string.
func parseValue(raw string) interface{} {
	var v interface{}
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v
	}
	return raw
}

func printValue(cmd *cobra.Command, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}
