package metadata

// SourceKind identifies where a metadata assertion came from. The kind feeds
// the merge engine's priority ordering and ends up in conflict reports, so
// the values are stable strings persisted in the catalog.
type SourceKind string

const (
	// SourceEXIF covers tags embedded in the media file itself.
	SourceEXIF SourceKind = "exif"
	// SourceSidecar covers structured export sidecars (Google Takeout JSON).
	SourceSidecar SourceKind = "sidecar"
	// SourceFilename covers dates recovered from filename patterns.
	SourceFilename SourceKind = "filename"
	// SourceWhatsApp covers the messaging-app attachment pattern, which
	// carries both a date and a sequence identifier.
	SourceWhatsApp SourceKind = "whatsapp"
)

// SourcePriority orders kinds from most to least trustworthy.
var SourcePriority = []SourceKind{SourceEXIF, SourceSidecar, SourceWhatsApp, SourceFilename}

// Field names the recognized metadata attributes. Anything outside this set
// is carried as an opaque pass-through text field.
type Field string

const (
	FieldDateTaken        Field = "date-taken"
	FieldGPSLatitude      Field = "gps-latitude"
	FieldGPSLongitude     Field = "gps-longitude"
	FieldTimezoneHint     Field = "timezone-hint"
	FieldTitle            Field = "title"
	FieldDescription      Field = "description"
	FieldCameraMake       Field = "camera-make"
	FieldCameraModel      Field = "camera-model"
	FieldWhatsAppSequence Field = "whatsapp-sequence"
)

// ParseSourceKind converts a stored string into a known SourceKind.
func ParseSourceKind(value string) (SourceKind, bool) {
	switch SourceKind(value) {
	case SourceEXIF, SourceSidecar, SourceFilename, SourceWhatsApp:
		return SourceKind(value), true
	}
	return "", false
}
