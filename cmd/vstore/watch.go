package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vstore/internal/config"
	"github.com/vango-dev/vstore/internal/errors"
	"github.com/vango-dev/vstore/pkg/persist"
	"github.com/vango-dev/vstore/pkg/store"
)

func watchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <key>...",
		Short: "Print keys as other processes change them",
		Long: `Print the decoded values of one or more keys as a JSON object, then print
it again every time another process writes one of them.

Watching needs a backend that reports changes; today that is the file
backend. Stop with Ctrl+C.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Storage.Backend != config.BackendFile {
				return errors.New("V061").
					WithDetail(fmt.Sprintf("The %s backend cannot report changes", a.cfg.Storage.Backend)).
					WithSuggestion("Set storage.backend = \"file\" to watch keys")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.watch(ctx, args)
		},
	}
}

// watch prints a snapshot of keys on start and after every change, until
// ctx is done.
func (a *app) watch(ctx context.Context, keys []string) error {
	storage, closeStorage, err := a.openStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStorage()
	storage = newSerialWatcher(storage)

	codec := codecFor[any](a.cfg.Codec)
	parents := make([]store.Readable[any], 0, len(keys))
	for _, key := range keys {
		s := store.New[any](nil,
			store.WithName(key),
			store.WithLogger(a.logger),
			store.WithErrorHandler(func(err error) {
				a.logger.Warn("watch: value dropped", "key", key, "error", err)
			}))

		p, err := persist.PersistCodec(ctx, s, codec,
			persist.WithKey(key),
			persist.WithStorage(storage))
		if err != nil {
			return errors.New("V061").WithDetail("watch " + key).Wrap(err)
		}
		defer p.Close()
		parents = append(parents, p)
	}

	snapshot := store.ComputedN(parents, func(values []any) map[string]any {
		m := make(map[string]any, len(keys))
		for i, v := range values {
			m[keys[i]] = v
		}
		return m
	}, store.WithName("watch"), store.WithLogger(a.logger))
	defer snapshot.Close()

	enc := json.NewEncoder(a.out)
	unsubscribe := snapshot.Subscribe(func(m map[string]any) {
		if err := enc.Encode(m); err != nil {
			a.logger.Warn("watch: print failed", "error", err)
		}
	})
	defer unsubscribe()

	<-ctx.Done()
	return nil
}
