package sqlite

import (
	"database/sql"

	"github.com/fieldstack/canvasser/internal/canvasser/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Users() store.Users { return &usersRepo{db: t.tx} }
func (t *txStore) Sales() store.Sales { return &salesRepo{db: t.tx} }
