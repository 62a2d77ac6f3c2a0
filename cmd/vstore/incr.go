package main

import (
	stderrors "errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vstore/internal/errors"
	"github.com/vango-dev/vstore/pkg/actions"
	"github.com/vango-dev/vstore/pkg/persist"
	"github.com/vango-dev/vstore/pkg/store"
)

func incrCmd(a *app) *cobra.Command {
	var by float64

	cmd := &cobra.Command{
		Use:   "incr <key>",
		Short: "Add to a numeric value",
		Long: `Add to the number stored under a key and print the result.

A missing key counts as 0.

Examples:
  vstore incr visits
  vstore incr balance --by -2.5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			storage, closeStorage, err := a.openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStorage()

			var saveErr error
			s := store.New[float64](0,
				store.WithName(key),
				store.WithLogger(a.logger),
				store.WithErrorHandler(func(err error) { saveErr = err }))

			p, err := persist.PersistCodec(cmd.Context(), s, codecFor[float64](a.cfg.Codec),
				persist.WithKey(key),
				persist.WithStorage(storage))
			if err != nil {
				var perr *persist.Error
				if stderrors.As(err, &perr) && perr.Op == persist.OpDecode {
					return errors.New("V041").
						WithDetail(fmt.Sprintf("%q does not hold a number", key)).
						Wrap(perr.Err)
				}
				return errors.New("V023").WithDetail("incr " + key).Wrap(err)
			}
			defer p.Close()

			counter := actions.NewCounter[float64](p)
			counter.Add(by)
			if saveErr != nil {
				return errors.New("V023").WithDetail("incr " + key).Wrap(saveErr)
			}

			fmt.Fprintln(a.out, strconv.FormatFloat(counter.Value(), 'f', -1, 64))
			return nil
		},
	}

	cmd.Flags().Float64Var(&by, "by", 1, "Amount to add")

	return cmd
}
