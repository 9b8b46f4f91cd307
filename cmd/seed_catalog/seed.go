package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jhoicas/Confecciones-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// materialNamespace espacio de nombres para derivar IDs estables: volver a correr el seed no duplica filas.
var materialNamespace = uuid.MustParse("5f1c7a52-2b64-4d1e-9a0c-6f3e8d2b7c41")

// Material fila del CSV ya normalizada.
type Material struct {
	ID          string
	Name        string
	UnitMeasure string
	Quantity    decimal.Decimal
}

// ReadMaterials lee nombre;unidad;cantidad. La primera fila es encabezado; las filas vacías se ignoran.
// La cantidad acepta coma decimal ("12,5").
func ReadMaterials(r io.Reader) ([]Material, error) {
	reader := csv.NewReader(transform.NewReader(r, charmap.Windows1252.NewDecoder()))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	seen := make(map[string]bool)
	var out []Material
	for row := 1; ; row++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("fila %d: %w", row, err)
		}
		if row == 1 || len(rec) == 0 || strings.TrimSpace(strings.Join(rec, "")) == "" {
			continue
		}
		if len(rec) < 3 {
			return nil, fmt.Errorf("fila %d: se esperaban 3 columnas, hay %d", row, len(rec))
		}
		name := strings.TrimSpace(rec[0])
		unit := strings.ToLower(strings.TrimSpace(rec[1]))
		if name == "" || unit == "" {
			return nil, fmt.Errorf("fila %d: nombre y unidad son obligatorios", row)
		}
		qty, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(rec[2]), ",", "."))
		if err != nil {
			return nil, fmt.Errorf("fila %d: cantidad inválida %q", row, rec[2])
		}
		if qty.IsNegative() {
			return nil, fmt.Errorf("fila %d: cantidad negativa", row)
		}
		if !entity.ValidQuantityScale(qty) {
			return nil, fmt.Errorf("fila %d: cantidad con más de %d decimales", row, entity.QuantityScale)
		}
		key := strings.ToLower(name)
		if seen[key] {
			return nil, fmt.Errorf("fila %d: material repetido %q", row, name)
		}
		seen[key] = true
		out = append(out, Material{
			ID:          uuid.NewSHA1(materialNamespace, []byte(key)).String(),
			Name:        name,
			UnitMeasure: unit,
			Quantity:    qty,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// WriteSQL escribe los INSERT de material_types y el asiento ENTRADA de apertura de cada uno,
// de modo que el saldo cacheado coincida con el libro desde el primer momento.
func WriteSQL(w io.Writer, materials []Material) error {
	var b strings.Builder
	b.WriteString("-- Tipos de material y saldo de apertura\n")
	b.WriteString("-- Generado por cmd/seed_catalog\n\n")
	b.WriteString("BEGIN;\n\n")
	for _, m := range materials {
		fmt.Fprintf(&b, "INSERT INTO material_types (id, name, unit_measure, on_hand, reserved)\n")
		fmt.Fprintf(&b, "VALUES ('%s', '%s', '%s', %s, 0)\nON CONFLICT (id) DO NOTHING;\n",
			m.ID, escapeSQL(m.Name), escapeSQL(m.UnitMeasure), m.Quantity.String())
		if m.Quantity.IsPositive() {
			entryID := uuid.NewSHA1(materialNamespace, []byte("apertura:"+m.ID)).String()
			fmt.Fprintf(&b, "INSERT INTO inventory_ledger (id, material_type_id, entry_type, quantity, note)\n")
			fmt.Fprintf(&b, "VALUES ('%s', '%s', 'ENTRADA', %s, 'saldo inicial')\nON CONFLICT (id) DO NOTHING;\n",
				entryID, m.ID, m.Quantity.String())
		}
		b.WriteString("\n")
	}
	b.WriteString("COMMIT;\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
