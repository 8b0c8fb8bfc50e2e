package output

import (
	"slices"
	"strconv"
	"time"

	"github.com/marmos91/mdcatalog/pkg/catalog/models"
)

// LocalTimeFormat is used for record dates in table output.
const LocalTimeFormat = "Mon Jan 2 15:04:05 2006"

// RecordView is the printable form of a catalog record. It names the store
// the record was found in.
type RecordView struct {
	Store string        `json:"store" yaml:"store"`
	Entry *models.Entry `json:"record" yaml:"record"`
}

// NewRecordView wraps a record for printing.
func NewRecordView(r models.Record) RecordView {
	return RecordView{Store: r.RecordKind().String(), Entry: r.GetEntry()}
}

// Headers implements TableRenderer.
func (v RecordView) Headers() []string {
	return []string{"Field", "Value"}
}

// Rows implements TableRenderer.
func (v RecordView) Rows() [][]string {
	e := v.Entry
	return [][]string{
		{"id", strconv.Itoa(e.ID)},
		{"store", v.Store},
		{"uuid", e.UUID},
		{"schema", e.DataInfo.SchemaID},
		{"type", e.DataInfo.Type},
		{"owner", strconv.Itoa(e.SourceInfo.Owner)},
		{"group owner", FormatOptionalInt(e.SourceInfo.GroupOwner)},
		{"source", e.SourceInfo.SourceID},
		{"harvested", strconv.FormatBool(e.HarvestInfo.Harvested)},
		{"harvest uuid", e.HarvestInfo.UUID},
		{"created", FormatTime(e.DataInfo.CreateDate)},
		{"changed", FormatTime(e.DataInfo.ChangeDate)},
	}
}

// SourceInfoTable lists source information keyed by record id.
type SourceInfoTable map[int]models.SourceInfo

// Headers implements TableRenderer.
func (t SourceInfoTable) Headers() []string {
	return []string{"ID", "Owner", "Group Owner", "Source"}
}

// Rows implements TableRenderer. Rows are sorted by id.
func (t SourceInfoTable) Rows() [][]string {
	ids := make([]int, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		info := t[id]
		rows = append(rows, []string{
			strconv.Itoa(id),
			strconv.Itoa(info.Owner),
			FormatOptionalInt(info.GroupOwner),
			info.SourceID,
		})
	}
	return rows
}

// IDList prints record ids one per row.
type IDList []int

// Headers implements TableRenderer.
func (l IDList) Headers() []string {
	return []string{"ID"}
}

// Rows implements TableRenderer.
func (l IDList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, id := range l {
		rows = append(rows, []string{strconv.Itoa(id)})
	}
	return rows
}

// FormatOptionalInt renders nil as "-".
func FormatOptionalInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

// FormatTime renders t in local time, or "-" for the zero time.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(LocalTimeFormat)
}
