package runs

import (
	"strings"

	"github.com/mmrzaf/dbfill/internal/domain"
)

// Repository stores run history. Implementations are selected by DSN shape:
// postgres URLs and keyword DSNs go to Postgres, everything else is treated
// as a SQLite file path.
type Repository interface {
	Init() error
	Close() error
	Create(run *domain.Run) error
	Update(run *domain.Run) error
	Get(id string) (*domain.Run, error)
	List(limit int, status string) ([]*domain.Run, error)
}

func New(dsn string) Repository {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return NewPostgresRepository(dsn)
	}
	return NewSQLiteRepository(dsn)
}
