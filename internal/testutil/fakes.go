// Package testutil contiene dobles en memoria de los puertos de persistencia
// y almacenamiento para los tests de casos de uso y handlers.
package testutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/Reportes-api/internal/domain"
	"github.com/jhoicas/Reportes-api/internal/domain/entity"
)

// UserRepo implementa repository.UserRepository en memoria.
type UserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*entity.User

	// FindErr, si no es nil, lo devuelve FindByEmail.
	FindErr error
}

func NewUserRepo() *UserRepo {
	return &UserRepo{users: map[string]*entity.User{}}
}

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.Email]; ok {
		return domain.ErrEmailAlreadyExists
	}
	r.seq++
	u.ID = fmt.Sprintf("u%04d", r.seq)
	stored := copyUser(u)
	stored.FechaRegistro = entity.StoredTime(u.FechaRegistro)
	r.users[u.Email] = stored
	return nil
}

func (r *UserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FindErr != nil {
		return nil, r.FindErr
	}
	u, ok := r.users[email]
	if !ok {
		return nil, nil
	}
	return copyUser(u), nil
}

func (r *UserRepo) UpdateFields(_ context.Context, email string, fields map[string]any) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return false, nil
	}
	for k, v := range fields {
		switch k {
		case entity.FieldNombre:
			u.Nombre, _ = v.(string)
		case entity.FieldRol:
			u.Rol, _ = v.(string)
		case entity.FieldPasswordHash:
			u.PasswordHash, _ = v.(string)
		case entity.FieldFechaActualizacion:
			if t, ok := v.(time.Time); ok {
				t = entity.StoredTime(t)
				u.FechaActualizacion = &t
			}
		default:
			if u.Campos == nil {
				u.Campos = map[string]any{}
			}
			u.Campos[k] = v
		}
	}
	return true, nil
}

func (r *UserRepo) List(_ context.Context) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, copyUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Get devuelve el usuario guardado tal cual (incluye el hash).
func (r *UserRepo) Get(email string) *entity.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[email]; ok {
		return copyUser(u)
	}
	return nil
}

func copyUser(u *entity.User) *entity.User {
	c := *u
	if u.Campos != nil {
		c.Campos = make(map[string]any, len(u.Campos))
		for k, v := range u.Campos {
			c.Campos[k] = v
		}
	}
	if u.FechaActualizacion != nil {
		t := *u.FechaActualizacion
		c.FechaActualizacion = &t
	}
	return &c
}

// ProfileRepo implementa repository.ProfileRepository en memoria.
type ProfileRepo struct {
	mu   sync.Mutex
	seq  int
	docs map[string]map[string]entity.Profile // contenedor → email → documento

	// Err, si no es nil, lo devuelven todas las operaciones.
	Err     error
	Inserts int
	Updates int
}

func NewProfileRepo() *ProfileRepo {
	return &ProfileRepo{docs: map[string]map[string]entity.Profile{}}
}

func (r *ProfileRepo) FindByEmail(_ context.Context, container, email string) (entity.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	if p, ok := r.docs[container][email]; ok {
		return p.Clone(), nil
	}
	return nil, nil
}

func (r *ProfileRepo) Insert(_ context.Context, container string, p entity.Profile) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return "", r.Err
	}
	email := p.String(entity.FieldEmail)
	if _, ok := r.docs[container][email]; ok {
		return "", domain.ErrConflict
	}
	if r.docs[container] == nil {
		r.docs[container] = map[string]entity.Profile{}
	}
	r.seq++
	id := fmt.Sprintf("p%04d", r.seq)
	doc := storedProfile(p)
	doc[entity.FieldID] = id
	r.docs[container][email] = doc
	r.Inserts++
	return id, nil
}

func (r *ProfileRepo) UpdateByEmail(_ context.Context, container, email string, fields entity.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	doc, ok := r.docs[container][email]
	if !ok {
		return nil
	}
	for k, v := range storedProfile(fields) {
		if k == entity.FieldID {
			continue
		}
		doc[k] = v
	}
	r.Updates++
	return nil
}

// storedProfile copia p con las fechas en la precisión del almacén.
func storedProfile(p entity.Profile) entity.Profile {
	out := p.Clone()
	for k, v := range out {
		if t, ok := v.(time.Time); ok {
			out[k] = entity.StoredTime(t)
		}
	}
	return out
}

// Put guarda un documento directamente, sin pasar por Insert.
func (r *ProfileRepo) Put(container string, p entity.Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.docs[container] == nil {
		r.docs[container] = map[string]entity.Profile{}
	}
	r.docs[container][p.String(entity.FieldEmail)] = p.Clone()
}

// Get devuelve el documento guardado o nil.
func (r *ProfileRepo) Get(container, email string) entity.Profile {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.docs[container][email]; ok {
		return p.Clone()
	}
	return nil
}

// ReportRepo implementa repository.ReportRepository en memoria.
// Los ids "legados" (AddLegacy) se guardan como string; el resto como si fueran ObjectID.
type ReportRepo struct {
	mu      sync.Mutex
	seq     int
	reports map[string]*entity.Report

	SaveErr error
	NoAck   bool
}

func NewReportRepo() *ReportRepo {
	return &ReportRepo{reports: map[string]*entity.Report{}}
}

func (r *ReportRepo) Save(_ context.Context, rep *entity.Report) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.SaveErr != nil {
		return "", false, r.SaveErr
	}
	if r.NoAck {
		return "", false, nil
	}
	r.seq++
	id := fmt.Sprintf("%024x", r.seq)
	c := copyReport(rep)
	c.ID = id
	r.reports[id] = c
	return id, true, nil
}

func (r *ReportRepo) List(_ context.Context) ([]*entity.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Report, 0, len(r.reports))
	for _, rep := range r.reports {
		out = append(out, copyReport(rep))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (r *ReportRepo) FindByID(_ context.Context, id string) (*entity.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rep, ok := r.reports[id]; ok {
		return copyReport(rep), nil
	}
	return nil, nil
}

func (r *ReportRepo) Update(_ context.Context, id string, patch entity.ReportPatch) (entity.UpdateOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rep, ok := r.reports[id]
	if !ok {
		return entity.UpdateOutcome{}, nil
	}
	before := copyReport(rep)
	for k, v := range patch {
		switch k {
		case entity.ReportFieldEmail:
			rep.Email = v.(string)
		case entity.ReportFieldDescripcion:
			rep.Descripcion = v.(string)
		case entity.ReportFieldTipoProblema:
			rep.TipoProblema = v.(string)
		case entity.ReportFieldQuienReporta:
			rep.QuienReporta = v.(string)
		case entity.ReportFieldPrioridad:
			rep.Prioridad = v.(string)
		case entity.ReportFieldEstado:
			rep.Estado = v.(string)
		case entity.ReportFieldDepartamento:
			rep.Departamento = append([]string(nil), v.([]string)...)
		case entity.ReportFieldImagenes:
			rep.Imagenes = append([]string(nil), v.([]string)...)
		}
	}
	return entity.UpdateOutcome{Matched: true, Modified: !sameReport(before, rep)}, nil
}

func (r *ReportRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reports[id]; !ok {
		return false, nil
	}
	delete(r.reports, id)
	return true, nil
}

// Put guarda un reporte con el id dado.
func (r *ReportRepo) Put(rep *entity.Report) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports[rep.ID] = copyReport(rep)
}

func copyReport(rep *entity.Report) *entity.Report {
	c := *rep
	c.Departamento = append([]string(nil), rep.Departamento...)
	c.Imagenes = append([]string(nil), rep.Imagenes...)
	return &c
}

func sameReport(a, b *entity.Report) bool {
	return fmt.Sprintf("%+v", *a) == fmt.Sprintf("%+v", *b)
}

// FileStore implementa report.FileStorage en memoria.
type FileStore struct {
	mu    sync.Mutex
	seq   int
	files map[string][]byte

	SaveErr   error
	RemoveErr map[string]error
}

func NewFileStore() *FileStore {
	return &FileStore{files: map[string][]byte{}, RemoveErr: map[string]error{}}
}

func (s *FileStore) Save(_ context.Context, ext string, r io.Reader) (string, error) {
	if s.SaveErr != nil {
		return "", s.SaveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	name := fmt.Sprintf("file-%d%s", s.seq, ext)
	s.files[name] = data
	return name, nil
}

func (s *FileStore) Remove(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.RemoveErr[name]; err != nil {
		return err
	}
	delete(s.files, name)
	return nil
}

// Put agrega un archivo existente.
func (s *FileStore) Put(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = data
}

// Has indica si el archivo existe.
func (s *FileStore) Has(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[name]
	return ok
}

// Len cantidad de archivos guardados.
func (s *FileStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

// ReceiptStub devuelve un PDF mínimo con el id del reporte.
type ReceiptStub struct{}

func (ReceiptStub) GenerateReportReceipt(_ context.Context, rep *entity.Report) ([]byte, error) {
	if rep == nil {
		return nil, errors.New("reporte nil")
	}
	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n% ")
	b.WriteString(rep.ID)
	return b.Bytes(), nil
}

// ErrPermission error de E/S para simular fallos al borrar archivos.
var ErrPermission = os.ErrPermission

// Reconciler registra las llamadas a Reconcile; devuelve Err si está definido.
type Reconciler struct {
	mu    sync.Mutex
	Err   error
	Calls []entity.Profile
}

func (r *Reconciler) Reconcile(_ context.Context, p entity.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls = append(r.Calls, p.Clone())
	return r.Err
}
