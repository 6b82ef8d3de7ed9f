package memory

import (
	"sync"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/ledger"
)

// Store es un almacén en memoria con la misma semántica que el backend
// PostgreSQL: ledger append-only, saldos por clave, cabeceras de traslado con
// idempotency key única y lote único por artículo. Lo usan los tests y el
// modo dev sin base de datos.
type Store struct {
	mu sync.Mutex

	items     map[string]entity.Item
	locations map[string]entity.Location
	batches   map[string]entity.Batch
	// batchKeys indexa itemID+"\x00"+batchNumber -> batchID (unicidad por artículo).
	batchKeys map[string]string

	movements       []entity.StockMovement
	balances        map[ledger.BalanceKey]entity.StockBalance
	transfers       map[string]entity.StockTransfer
	transfersByIdem map[string]string
	seq             int64

	// failMovementCreates > 0 hace fallar las próximas n escrituras de
	// movimiento con ErrPersistence (inyección de fallos en tests);
	// failMovementSkip deja pasar esas escrituras antes de empezar a fallar.
	failMovementCreates int
	failMovementSkip    int
}

// NewStore construye un almacén vacío.
func NewStore() *Store {
	return &Store{
		items:           map[string]entity.Item{},
		locations:       map[string]entity.Location{},
		batches:         map[string]entity.Batch{},
		batchKeys:       map[string]string{},
		balances:        map[ledger.BalanceKey]entity.StockBalance{},
		transfers:       map[string]entity.StockTransfer{},
		transfersByIdem: map[string]string{},
	}
}

// FailNextMovementCreates hace que las próximas n escrituras de movimiento
// fallen con ErrPersistence. Sirve para probar atomicidad bajo fallos.
func (s *Store) FailNextMovementCreates(n int) {
	s.FailMovementCreatesAfter(0, n)
}

// FailMovementCreatesAfter deja pasar skip escrituras de movimiento y hace
// fallar las n siguientes. Permite romper, por ejemplo, solo la segunda mitad
// de un par de traslado.
func (s *Store) FailMovementCreatesAfter(skip, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failMovementSkip = skip
	s.failMovementCreates = n
}

// snapshot captura el estado mutado por una unidad de trabajo del ledger.
type snapshot struct {
	movementCount   int
	seq             int64
	balances        map[ledger.BalanceKey]entity.StockBalance
	transfers       map[string]entity.StockTransfer
	transfersByIdem map[string]string
}

// takeSnapshot copia el estado del ledger bajo el lock del store.
func (s *Store) takeSnapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := snapshot{
		movementCount:   len(s.movements),
		seq:             s.seq,
		balances:        make(map[ledger.BalanceKey]entity.StockBalance, len(s.balances)),
		transfers:       make(map[string]entity.StockTransfer, len(s.transfers)),
		transfersByIdem: make(map[string]string, len(s.transfersByIdem)),
	}
	for k, v := range s.balances {
		snap.balances[k] = v
	}
	for k, v := range s.transfers {
		snap.transfers[k] = v
	}
	for k, v := range s.transfersByIdem {
		snap.transfersByIdem[k] = v
	}
	return snap
}

// restore vuelve al estado capturado (rollback de la unidad de trabajo).
func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.movements = s.movements[:snap.movementCount]
	s.seq = snap.seq
	s.balances = snap.balances
	s.transfers = snap.transfers
	s.transfersByIdem = snap.transfersByIdem
}
