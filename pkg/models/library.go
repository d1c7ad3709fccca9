package models

// idSeparator joins the components of persisted item keys. It never appears
// in section or set folder names in practice, so keys parse unambiguously.
const idSeparator = "|"

// partsSegment is the fixed middle segment of part item keys.
const partsSegment = "Parts"

// PartLabel classifies a practiced fragment by the keyword in its filename.
type PartLabel string

const (
	LabelPhrase PartLabel = "phrase"
	LabelLine   PartLabel = "line"
	LabelPart   PartLabel = "part"
)

// PartLabels lists the labels in bucket order: phrases first, then lines,
// then parts. Detection also checks keywords in this order.
var PartLabels = []PartLabel{LabelPhrase, LabelLine, LabelPart}

// SetID identifies a set folder by its owning section and its own folder name.
type SetID struct {
	Section string `json:"section"`
	Folder  string `json:"folder"`
}

// String returns the persisted composite key "<section>|<folder>".
func (id SetID) String() string {
	return id.Section + idSeparator + id.Folder
}

// TuneID identifies a tune within a set.
type TuneID struct {
	Set  SetID  `json:"set"`
	Name string `json:"name"`
}

// String returns the persisted composite key "<section>|<folder>|<tune>".
func (id TuneID) String() string {
	return id.Set.String() + idSeparator + id.Name
}

// PartID identifies a practiced part within a set's Parts folder by its
// pairing key (the instrument-agnostic filename stem).
type PartID struct {
	Set SetID  `json:"set"`
	Key string `json:"key"`
}

// String returns the persisted composite key "<section>|<folder>|Parts|<key>".
func (id PartID) String() string {
	return id.Set.String() + idSeparator + partsSegment + idSeparator + id.Key
}

// TuneRef names one tune belonging to a set.
type TuneRef struct {
	Name string `json:"tune_name"`
	ID   TuneID `json:"-"`
}

// PartRecord is one practiced fragment discovered in a set's Parts folder,
// with its paired score and recording files.
type PartRecord struct {
	Key        string    `json:"part_id"` // pairing key, stable identity within the set
	ShortLabel string    `json:"short_label"`
	Label      PartLabel `json:"label"`
	PDFPath    string    `json:"pdf_path"`
	WAVPath    string    `json:"wav_path"`
	TuneID     TuneID    `json:"-"`
	TuneName   string    `json:"tune_name"`
	FullID     PartID    `json:"-"`
}

// SetRecord is one discovered set folder with its resolved tunes and parts.
// Records are recomputed from scratch on every discovery pass; only the
// derived string keys carry identity across passes.
type SetRecord struct {
	SectionName string       `json:"section_name"`
	FolderName  string       `json:"set_folder_name"`
	Path        string       `json:"set_path"`
	ID          SetID        `json:"-"`
	Tunes       []TuneRef    `json:"tunes"`
	Parts       []PartRecord `json:"parts"`
}
