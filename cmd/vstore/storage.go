package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"sync"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	_ "modernc.org/sqlite"

	"github.com/vango-dev/vstore/internal/config"
	"github.com/vango-dev/vstore/internal/errors"
	"github.com/vango-dev/vstore/pkg/persist"
)

const remoteTimeout = 10 * time.Second

// openStorage opens the configured backend. The returned close function
// releases whatever the backend holds open.
func (a *app) openStorage(ctx context.Context) (persist.Storage, func() error, error) {
	sc := a.cfg.Storage
	closeFn := func() error { return nil }

	var storage persist.Storage
	switch sc.Backend {
	case config.BackendMemory:
		storage = persist.NewMemoryStorage()

	case config.BackendFile:
		fs, err := persist.NewFileStorage(sc.Dir, persist.WithFileLogger(a.logger))
		if err != nil {
			return nil, nil, openError(sc.Backend, err)
		}
		storage = fs

	case config.BackendSQLite:
		db, err := sql.Open("sqlite", sc.DSN)
		if err != nil {
			return nil, nil, openError(sc.Backend, err)
		}
		db.SetMaxOpenConns(1)

		st := persist.NewSQLStorage(db,
			persist.WithSQLDialect(persist.DialectSQLite),
			persist.WithSQLTableName(sc.Table))
		if err := st.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, openError(sc.Backend, err)
		}
		storage, closeFn = st, db.Close

	case config.BackendS3:
		var opts []func(*awsconfig.LoadOptions) error
		if sc.Region != "" {
			opts = append(opts, awsconfig.WithRegion(sc.Region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, nil, openError(sc.Backend, err)
		}
		storage = persist.NewS3Storage(s3.NewFromConfig(awsCfg), sc.Bucket, persist.WithS3Prefix(sc.S3Prefix))

	case config.BackendRemote:
		storage = persist.NewRemoteStorage(sc.URL, &http.Client{Timeout: remoteTimeout})

	default:
		return nil, nil, errors.New("V004").WithDetail(fmt.Sprintf("storage.backend is %q", sc.Backend))
	}

	if sc.Prefix != "" {
		storage = persist.Prefixed(storage, sc.Prefix)
	}
	a.logger.Debug("storage opened", "backend", sc.Backend, "prefix", sc.Prefix)
	return storage, closeFn, nil
}

func openError(backend string, err error) error {
	return errors.New("V020").
		WithDetail(fmt.Sprintf("The %s backend could not be opened", backend)).
		Wrap(err)
}

// codecFor returns the codec named by the codec setting.
func codecFor[T any](name string) persist.Codec[T] {
	switch name {
	case "yaml":
		return persist.YAML[T]()
	case "toml":
		return persist.TOML[T]()
	case "text":
		return persist.Text[T]()
	default:
		return persist.JSON[T]()
	}
}

// serialWatcher runs every watch callback under one lock, so stores fed by
// several watchers are published from one goroutine at a time.
type serialWatcher struct {
	persist.Storage
	watcher persist.Watcher
	mu      *sync.Mutex
}

func newSerialWatcher(storage persist.Storage) persist.Storage {
	w, ok := storage.(persist.Watcher)
	if !ok {
		return storage
	}
	return &serialWatcher{Storage: storage, watcher: w, mu: &sync.Mutex{}}
}

func (s *serialWatcher) Watch(ctx context.Context, key string, fn func(string)) (func(), error) {
	return s.watcher.Watch(ctx, key, func(value string) {
		s.mu.Lock()
		defer s.mu.Unlock()
		fn(value)
	})
}
