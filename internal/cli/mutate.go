package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/khidmat-portal/khidmat/internal/access"
	"github.com/khidmat-portal/khidmat/internal/app"
	"github.com/khidmat-portal/khidmat/internal/catalog"
	"github.com/khidmat-portal/khidmat/internal/listing"
	"github.com/khidmat-portal/khidmat/internal/notify"
)

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:               "delete <entity> <id>",
		Short:             "Delete one record",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeEntities,
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := catalog.Lookup(args[0])
			if err != nil {
				return err
			}
			id := strings.TrimSpace(args[1])

			env, err := openGuarded(cmd, opts, entity, access.ActionDelete)
			if err != nil {
				return err
			}
			defer func() { _ = env.Close() }()

			if !yes {
				prompt := fmt.Sprintf("Delete %s %s? [y/N] ", entity.Noun, id)
				if !confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), prompt) {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return err
				}
			}

			ctrl := env.Controller(entity, notify.Discard)
			if _, err := ctrl.Delete(cmd.Context(), id); err != nil {
				return errors.New(listing.Describe(err, "delete", entity.Noun))
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %s.\n", entity.Noun, id)
			return err
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

type payloadFlags struct {
	data string
	file string
}

func (p *payloadFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&p.data, "data", "d", "", "JSON object to send")
	cmd.Flags().StringVar(&p.file, "file", "", "Read the JSON object from a file (- for stdin)")
	cmd.MarkFlagsMutuallyExclusive("data", "file")
	cmd.MarkFlagsOneRequired("data", "file")
}

func (p *payloadFlags) read(stdin io.Reader) (map[string]any, error) {
	text := p.data
	if p.file != "" {
		var (
			raw []byte
			err error
		)
		if p.file == "-" {
			raw, err = io.ReadAll(stdin)
		} else {
			raw, err = os.ReadFile(p.file)
		}
		if err != nil {
			return nil, fmt.Errorf("read payload: %w", err)
		}
		text = string(raw)
	}
	return decodePayload(text)
}

// decodePayload parses a JSON object, keeping numbers as json.Number so ids
// and amounts round-trip unchanged.
func decodePayload(text string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("invalid JSON payload: %w", err)
	}
	if payload == nil {
		return nil, fmt.Errorf("payload must be a JSON object")
	}
	return payload, nil
}

func newCreateCmd(opts *rootOptions) *cobra.Command {
	var payload payloadFlags
	cmd := &cobra.Command{
		Use:               "create <entity>",
		Short:             "Create a record from a JSON object",
		Example:           `  khidmat create categories --data '{"title_en":"Dua","is_active":1}'`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeEntities,
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := catalog.Lookup(args[0])
			if err != nil {
				return err
			}
			body, err := payload.read(cmd.InOrStdin())
			if err != nil {
				return err
			}
			env, err := openGuarded(cmd, opts, entity, access.ActionCreate)
			if err != nil {
				return err
			}
			defer func() { _ = env.Close() }()

			out, err := env.Controller(entity, notify.Discard).Create(cmd.Context(), body)
			if err != nil {
				return errors.New(listing.Describe(err, "create", entity.Noun))
			}
			return writeJSON(cmd.OutOrStdout(), out.Record)
		},
	}
	payload.register(cmd)
	return cmd
}

func newUpdateCmd(opts *rootOptions) *cobra.Command {
	var payload payloadFlags
	cmd := &cobra.Command{
		Use:               "update <entity> <id>",
		Short:             "Update a record from a JSON object",
		Example:           `  khidmat update zones 4 --data '{"city":"Lahore"}'`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeEntities,
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := catalog.Lookup(args[0])
			if err != nil {
				return err
			}
			body, err := payload.read(cmd.InOrStdin())
			if err != nil {
				return err
			}
			env, err := openGuarded(cmd, opts, entity, access.ActionEdit)
			if err != nil {
				return err
			}
			defer func() { _ = env.Close() }()

			out, err := env.Controller(entity, notify.Discard).Update(cmd.Context(), strings.TrimSpace(args[1]), body)
			if err != nil {
				return errors.New(listing.Describe(err, "edit", entity.Noun))
			}
			return writeJSON(cmd.OutOrStdout(), out.Record)
		},
	}
	payload.register(cmd)
	return cmd
}

// openGuarded opens the portal session and checks the action before any
// prompt or request.
func openGuarded(cmd *cobra.Command, opts *rootOptions, entity catalog.Entity, action access.Action) (*app.Env, error) {
	env, err := openEnv(cmd, opts)
	if err != nil {
		return nil, err
	}
	if err := sessionError(env); err != nil {
		_ = env.Close()
		return nil, err
	}
	if err := env.Gate.Guard(entity.Name, action); err != nil {
		_ = env.Close()
		return nil, errors.New(listing.Describe(err, action.String(), "this "+entity.Noun))
	}
	return env, nil
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	_, _ = fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
