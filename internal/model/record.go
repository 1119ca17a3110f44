package model

import "strconv"

// Field is the key of a canonical record column.
type Field string

const (
	FieldID            Field = "id"
	FieldStartDate     Field = "start_date"
	FieldAC            Field = "ac"
	FieldTempoAOS      Field = "tempo_aos"
	FieldOrderPS       Field = "order_ps"
	FieldBase          Field = "base"
	FieldPartNumber    Field = "partnumber"
	FieldAnaliseMTL    Field = "analise_mtl"
	FieldTempoMaterial Field = "tempo_material"
	FieldRange         Field = "range"
	FieldHoraReq       Field = "hora_req"
	FieldHoraPouso     Field = "hora_pouso"
	FieldHoraRec       Field = "hora_rec"
	FieldPrioridade    Field = "prioridade"
	FieldObservacao    Field = "observacao"
	FieldMTLUtilizado  Field = "mtl_utilizado"
)

// Fields is the canonical column order. Spreadsheet columns are mapped onto it
// positionally and exports are laid out with it.
var Fields = []Field{
	FieldStartDate,
	FieldAC,
	FieldTempoAOS,
	FieldOrderPS,
	FieldBase,
	FieldPartNumber,
	FieldAnaliseMTL,
	FieldTempoMaterial,
	FieldRange,
	FieldHoraReq,
	FieldHoraPouso,
	FieldHoraRec,
	FieldPrioridade,
	FieldObservacao,
	FieldMTLUtilizado,
}

// TimeFields hold HH:MM:SS values.
var TimeFields = []Field{
	FieldTempoAOS,
	FieldTempoMaterial,
	FieldHoraReq,
	FieldHoraPouso,
	FieldHoraRec,
}

var displayNames = map[Field]string{
	FieldID:            "ID",
	FieldStartDate:     "DATA",
	FieldAC:            "ACFT",
	FieldTempoAOS:      "TEMPO AOS",
	FieldOrderPS:       "TRANSFER/PS",
	FieldBase:          "BASE",
	FieldPartNumber:    "PART NUMBER",
	FieldAnaliseMTL:    "INF.",
	FieldTempoMaterial: "TEMPO LOG MTL",
	FieldRange:         "RANGE",
	FieldHoraReq:       "REQUISIÇÃO",
	FieldHoraPouso:     "PREV. DE POUSO.",
	FieldHoraRec:       "RECEBIMENTO",
	FieldPrioridade:    "PRIORIDADE",
	FieldObservacao:    "OBSERVAÇÃO",
	FieldMTLUtilizado:  "MTL UTILIZADO",
}

// DisplayName returns the column header used in tables and exports.
func DisplayName(f Field) string {
	if name, ok := displayNames[f]; ok {
		return name
	}
	return string(f)
}

// IsTimeField reports whether f holds a time of day or elapsed time.
func IsTimeField(f Field) bool {
	for _, tf := range TimeFields {
		if tf == f {
			return true
		}
	}
	return false
}

// ParseField resolves a canonical column key. The id column is not accepted.
func ParseField(s string) (Field, bool) {
	for _, f := range Fields {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// Record is one AOS event. All columns are text because source spreadsheets
// mix numeric and string encodings; absent cells are empty strings.
type Record struct {
	ID            *int64 `json:"id,omitempty" db:"id"`
	StartDate     string `json:"start_date" db:"start_date"`
	AC            string `json:"ac" db:"ac"`
	TempoAOS      string `json:"tempo_aos" db:"tempo_aos"`
	OrderPS       string `json:"order_ps" db:"order_ps"`
	Base          string `json:"base" db:"base"`
	PartNumber    string `json:"partnumber" db:"partnumber"`
	AnaliseMTL    string `json:"analise_mtl" db:"analise_mtl"`
	TempoMaterial string `json:"tempo_material" db:"tempo_material"`
	Range         string `json:"range" db:"range_text"`
	HoraReq       string `json:"hora_req" db:"hora_req"`
	HoraPouso     string `json:"hora_pouso" db:"hora_pouso"`
	HoraRec       string `json:"hora_rec" db:"hora_rec"`
	Prioridade    string `json:"prioridade" db:"prioridade"`
	Observacao    string `json:"observacao" db:"observacao"`
	MTLUtilizado  string `json:"mtl_utilizado" db:"mtl_utilizado"`
}

func (r *Record) field(f Field) *string {
	switch f {
	case FieldStartDate:
		return &r.StartDate
	case FieldAC:
		return &r.AC
	case FieldTempoAOS:
		return &r.TempoAOS
	case FieldOrderPS:
		return &r.OrderPS
	case FieldBase:
		return &r.Base
	case FieldPartNumber:
		return &r.PartNumber
	case FieldAnaliseMTL:
		return &r.AnaliseMTL
	case FieldTempoMaterial:
		return &r.TempoMaterial
	case FieldRange:
		return &r.Range
	case FieldHoraReq:
		return &r.HoraReq
	case FieldHoraPouso:
		return &r.HoraPouso
	case FieldHoraRec:
		return &r.HoraRec
	case FieldPrioridade:
		return &r.Prioridade
	case FieldObservacao:
		return &r.Observacao
	case FieldMTLUtilizado:
		return &r.MTLUtilizado
	}
	return nil
}

// Get returns the string form of a column. Unknown fields read as "".
func (r Record) Get(f Field) string {
	if f == FieldID {
		if r.ID == nil {
			return ""
		}
		return strconv.FormatInt(*r.ID, 10)
	}
	if p := r.field(f); p != nil {
		return *p
	}
	return ""
}

// Set assigns a column value. Unknown fields and id are ignored.
func (r *Record) Set(f Field, v string) {
	if p := r.field(f); p != nil {
		*p = v
	}
}

// Values returns the record in canonical column order.
func (r Record) Values() []string {
	values := make([]string, len(Fields))
	for i, f := range Fields {
		values[i] = r.Get(f)
	}
	return values
}
