// Package store guarda el historial de corridas en SQLite. El esquema
// viaja embebido con el binario.
package store

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaFS embed.FS

// Store capa de persistencia sobre SQLite
type Store struct {
	db *sql.DB
}

// Run una corrida del generador de informes
type Run struct {
	ID       string    `json:"id"`
	Anyo     int       `json:"anyo"`
	Mes      int       `json:"mes"`
	Empresa  string    `json:"empresa"`
	Barra    string    `json:"barra"`
	Medidor  string    `json:"medidor"`
	Destino  string    `json:"destino"`
	Estado   string    `json:"estado"`
	Detalle  string    `json:"detalle"`
	CreadoEn time.Time `json:"creado_en"`
}

// Estados posibles de una corrida
const (
	EstadoEnProceso  = "en_proceso"
	EstadoCompletado = "completado"
	EstadoError      = "error"
)

// New abre o crea la base de datos y aplica el esquema
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("crear directorio de datos: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("abrir base de datos: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("conectar base de datos: %w", err)
	}

	// SQLite trabaja mejor con una sola conexión
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("inicializar esquema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("leer schema.sql: %w", err)
	}
	if _, err := s.db.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("ejecutar esquema: %w", err)
	}
	return nil
}

// Close cierra la conexión
func (s *Store) Close() error {
	return s.db.Close()
}

// CrearRun registra una corrida recién iniciada
func (s *Store) CrearRun(r Run) error {
	_, err := s.db.Exec(
		`INSERT INTO runs (id, anyo, mes, empresa, barra, medidor, destino, estado, detalle)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Anyo, r.Mes, r.Empresa, r.Barra, r.Medidor, r.Destino, EstadoEnProceso, r.Detalle,
	)
	if err != nil {
		return fmt.Errorf("insertar corrida %s: %w", r.ID, err)
	}
	return nil
}

// CompletarRun cierra una corrida con su estado final y detalle
func (s *Store) CompletarRun(id, estado, detalle string) error {
	res, err := s.db.Exec(
		`UPDATE runs SET estado = ?, detalle = ? WHERE id = ?`,
		estado, detalle, id,
	)
	if err != nil {
		return fmt.Errorf("actualizar corrida %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("corrida %s no existe", id)
	}
	return nil
}

// ListarRuns últimas corridas, la más reciente primero
func (s *Store) ListarRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT id, anyo, mes, empresa, barra, medidor, destino, estado, detalle, creado_en
		 FROM runs ORDER BY creado_en DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("consultar corridas: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Anyo, &r.Mes, &r.Empresa, &r.Barra, &r.Medidor,
			&r.Destino, &r.Estado, &r.Detalle, &r.CreadoEn); err != nil {
			return nil, fmt.Errorf("leer corrida: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
