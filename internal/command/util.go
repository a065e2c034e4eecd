package command

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/term"

	"github.com/ayush/blog-api/internal/config"
	"github.com/ayush/blog-api/internal/store"
)

type configKey struct{}

const connectTimeout = 10 * time.Second

func configFrom(ctx context.Context) (*config.Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*config.Config)
	if !ok {
		return nil, errors.New("configuration resolution failed")
	}
	return cfg, nil
}

// stores bundles the backends selected by configuration.
type stores struct {
	Posts  store.PostStore
	Users  store.UserStore
	closer []func(context.Context) error
}

// Close releases every backend connection.
func (s *stores) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	var errs []error
	for i := len(s.closer) - 1; i >= 0; i-- {
		errs = append(errs, s.closer[i](ctx))
	}
	return errors.Join(errs...)
}

// openStores connects the configured backends. Posts always live in MongoDB
// (or memory); users move to PostgreSQL when a DSN is configured.
func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *stores, err error) {
	if cfg.InMemory {
		mem := store.NewMemoryStore()
		logger.WarnContext(ctx, "using in-memory store, data will not survive a restart")
		return &stores{Posts: mem, Users: mem}, nil
	}

	s := &stores{}
	defer func() {
		if err != nil {
			err = errors.Join(err, s.Close())
		}
	}()

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	s.closer = append(s.closer, client.Disconnect)
	if err = client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	mongoStore := store.NewMongoStore(client.Database(cfg.MongoDB))
	if err = mongoStore.EnsureIndexes(connectCtx); err != nil {
		return nil, fmt.Errorf("mongo indexes: %w", err)
	}
	s.Posts, s.Users = mongoStore, mongoStore
	logger.InfoContext(ctx, "connected to mongodb", slog.String("database", cfg.MongoDB))

	if cfg.PostgresDSN == "" {
		return s, nil
	}

	pool, err := pgxpool.New(connectCtx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	s.closer = append(s.closer, func(context.Context) error {
		pool.Close()
		return nil
	})
	pgStore := store.NewPostgresStore(pool)
	if err = pgStore.Migrate(connectCtx); err != nil {
		return nil, fmt.Errorf("postgres migrate: %w", err)
	}
	s.Users = pgStore
	logger.InfoContext(ctx, "connected to postgres, users stored there")
	return s, nil
}

// readPassword reads one line from in. When in is a terminal the prompt is
// written to out and the input is not echoed.
func readPassword(in io.Reader, out io.Writer, prompt string) ([]byte, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if _, err := io.WriteString(out, prompt); err != nil {
			return nil, err
		}
		defer fmt.Fprintln(out)
		return term.ReadPassword(int(f.Fd()))
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return nil, err
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}

func version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown-dev"
	}
	ver := "unknown"
	dirty := false
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			ver = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	if dirty {
		ver += "-dev"
	}
	return ver
}
