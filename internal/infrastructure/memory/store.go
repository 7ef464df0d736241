// Package memory implementa los puertos del libro de inventario en proceso.
// Sirve para DB_DRIVER=memory y para pruebas: bloqueo exclusivo por material hasta commit/rollback
// y escrituras que se aplican todas juntas al confirmar.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/Obras-api/internal/application/ledger"
	"github.com/jhoicas/Obras-api/internal/domain/entity"
)

var _ ledger.TxRunner = (*Store)(nil)

type data struct {
	materials  map[string]entity.Material
	records    []entity.InventoryRecord // orden de inserción
	activities []entity.ProjectActivity
	projects   map[string]entity.Project
	users      map[string]entity.User
	custodians map[string]map[string]struct{} // project_id -> user_ids
}

func newData() *data {
	return &data{
		materials:  map[string]entity.Material{},
		projects:   map[string]entity.Project{},
		users:      map[string]entity.User{},
		custodians: map[string]map[string]struct{}{},
	}
}

func (d *data) clone() *data {
	c := &data{
		materials:  make(map[string]entity.Material, len(d.materials)),
		records:    append([]entity.InventoryRecord(nil), d.records...),
		activities: append([]entity.ProjectActivity(nil), d.activities...),
		projects:   make(map[string]entity.Project, len(d.projects)),
		users:      make(map[string]entity.User, len(d.users)),
		custodians: make(map[string]map[string]struct{}, len(d.custodians)),
	}
	for k, v := range d.materials {
		c.materials[k] = v
	}
	for k, v := range d.projects {
		c.projects[k] = v
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for p, set := range d.custodians {
		cs := make(map[string]struct{}, len(set))
		for u := range set {
			cs[u] = struct{}{}
		}
		c.custodians[p] = cs
	}
	return c
}

// op es una escritura diferida; se valida al registrarse y se vuelve a aplicar al confirmar.
type op func(d *data) error

// tx estado de una unidad de trabajo: bloqueos tomados y escrituras pendientes.
type tx struct {
	held map[string]struct{}
	ops  []op
}

// Store almacén en memoria. El valor cero no es usable; crear con New.
type Store struct {
	mu   sync.RWMutex
	base *data

	locksMu sync.Mutex
	locks   map[string]chan struct{}
}

// New crea un almacén vacío.
func New() *Store {
	return &Store{base: newData(), locks: map[string]chan struct{}{}}
}

// Run ejecuta fn en una transacción. Las escrituras solo se publican si fn devuelve nil y ctx sigue vigente;
// los bloqueos se liberan después de publicar.
func (s *Store) Run(ctx context.Context, fn func(tx ledger.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	t := &tx{held: map[string]struct{}{}}
	defer s.releaseAll(t)

	if err := fn(s.repos(t)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return s.commit(t.ops)
}

// Repositories repos de autocommit: cada escritura es su propia transacción.
func (s *Store) Repositories() ledger.Repos {
	return s.repos(nil)
}

func (s *Store) repos(t *tx) ledger.Repos {
	return ledger.Repos{
		Materials:  &materialRepo{s: s, t: t},
		Records:    &recordRepo{s: s, t: t},
		Activities: &activityRepo{s: s, t: t},
		Projects:   &projectRepo{s: s, t: t},
		Users:      &userRepo{s: s, t: t},
	}
}

// view copia el estado confirmado y aplica encima las escrituras pendientes de t.
func (s *Store) view(t *tx) (*data, error) {
	s.mu.RLock()
	d := s.base.clone()
	s.mu.RUnlock()
	if t == nil {
		return d, nil
	}
	for _, o := range t.ops {
		if err := o(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// stage valida o contra la vista de t y la encola; sin t se confirma de inmediato.
func (s *Store) stage(t *tx, o op) error {
	if t == nil {
		return s.commit([]op{o})
	}
	d, err := s.view(t)
	if err != nil {
		return err
	}
	if err := o(d); err != nil {
		return err
	}
	t.ops = append(t.ops, o)
	return nil
}

func (s *Store) commit(ops []op) error {
	if len(ops) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.base.clone()
	for _, o := range ops {
		if err := o(next); err != nil {
			return err
		}
	}
	s.base = next
	return nil
}

func (s *Store) lockFor(id string) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	ch, ok := s.locks[id]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[id] = ch
	}
	return ch
}

// acquire toma el bloqueo exclusivo del material para t. La espera respeta ctx.
func (s *Store) acquire(ctx context.Context, t *tx, id string) error {
	if _, ok := t.held[id]; ok {
		return nil
	}
	select {
	case s.lockFor(id) <- struct{}{}:
		t.held[id] = struct{}{}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("lock material %s: %w", id, ctx.Err())
	}
}

func (s *Store) releaseAll(t *tx) {
	for id := range t.held {
		<-s.lockFor(id)
	}
	t.held = nil
}

// PutUser registra o reemplaza un usuario (la gestión de usuarios es externa al inventario).
func (s *Store) PutUser(u entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.base.users[u.ID] = u
}

// PutProject registra o reemplaza un proyecto.
func (s *Store) PutProject(p entity.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.base.projects[p.ID] = p
}

// RevokeCustodian quita una asignación proyecto ↔ responsable.
func (s *Store) RevokeCustodian(projectID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.base.custodians[projectID], userID)
}
