package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/vstore/internal/errors"
)

func getCmd(a *app) *cobra.Command {
	var decode bool

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print the value stored under a key",
		Long: `Print the value stored under a key exactly as the backend holds it.

With --decode the value is decoded with the configured codec and printed
as JSON, which also checks that it is readable by persisted stores.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			storage, closeStorage, err := a.openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStorage()

			raw, found, err := storage.GetItem(cmd.Context(), key)
			if err != nil {
				return errors.New("V023").WithDetail("get " + key).Wrap(err)
			}
			if !found {
				return errors.New("V021").WithDetail(fmt.Sprintf("Nothing is stored under %q", key))
			}

			if !decode {
				fmt.Fprintln(a.out, raw)
				return nil
			}

			value, err := codecFor[any](a.cfg.Codec).Decode(raw)
			if err != nil {
				return errors.New("V022").
					WithDetail(fmt.Sprintf("%q is not valid %s", key, a.cfg.Codec)).
					Wrap(err)
			}
			out, err := json.Marshal(value)
			if err != nil {
				return errors.New("V022").Wrap(err)
			}
			fmt.Fprintln(a.out, string(out))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&decode, "decode", "d", false, "Decode with the configured codec and print JSON")

	return cmd
}

func setCmd(a *app) *cobra.Command {
	var asString bool

	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a value under a key",
		Long: `Store a value under a key, encoded with the configured codec.

The value is read as YAML, so numbers, booleans, lists and maps keep their
type: 42, true, [a, b] and {theme: dark} all work. Use --string to store
the argument as a plain string.

Examples:
  vstore set count 42
  vstore set prefs '{"theme": "dark"}'
  vstore set greeting --string 'hello: world'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value, err := parseValue(args[1], asString)
			if err != nil {
				return err
			}

			raw, err := codecFor[any](a.cfg.Codec).Encode(value)
			if err != nil {
				return errors.New("V040").
					WithDetail(fmt.Sprintf("The value cannot be encoded as %s", a.cfg.Codec)).
					Wrap(err)
			}

			storage, closeStorage, err := a.openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStorage()

			if err := storage.SetItem(cmd.Context(), key, raw); err != nil {
				return errors.New("V023").WithDetail("set " + key).Wrap(err)
			}
			a.logger.Debug("item stored", "key", key, "bytes", len(raw))
			success(a, "Stored %s", key)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&asString, "string", "s", false, "Store the value as a plain string")

	return cmd
}

// parseValue reads a command-line value as YAML unless asString is set.
func parseValue(arg string, asString bool) (any, error) {
	if asString {
		return arg, nil
	}
	var value any
	if err := yaml.Unmarshal([]byte(arg), &value); err != nil {
		return nil, errors.New("V040").
			WithDetail(fmt.Sprintf("%q is not a valid value", arg)).
			WithSuggestion("Quote it and pass --string to store it as text").
			Wrap(err)
	}
	return value, nil
}

func rmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <key>...",
		Aliases: []string{"remove"},
		Short:   "Remove keys",
		Long:    `Remove one or more keys. Removing a key that does not exist is not an error.`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			storage, closeStorage, err := a.openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStorage()

			for _, key := range args {
				if err := storage.RemoveItem(cmd.Context(), key); err != nil {
					return errors.New("V023").WithDetail("rm " + key).Wrap(err)
				}
				success(a, "Removed %s", key)
			}
			return nil
		},
	}
}
