package metadata

// Outcome labels used for logging and metrics.
const (
	OutcomeOK         = "ok"
	OutcomeNoMetadata = "no_metadata"
	OutcomeFailed     = "failed"
)

// Result is the outcome of one extraction. It always has the same top-level
// shape; callers only need to check Success and HasMetadata.
type Result struct {
	Success        bool           `json:"success"`
	HasMetadata    bool           `json:"hasMetadata"`
	Error          *string        `json:"error"`
	Details        string         `json:"details,omitempty"`
	GPS            *GPSInfo       `json:"gps"`
	Camera         *CameraInfo    `json:"camera"`
	Timestamp      *TimestampInfo `json:"timestamp"`
	Technical      *TechnicalInfo `json:"technical"`
	PDFInfo        *PDFInfo       `json:"pdfInfo"`
	Raw            interface{}    `json:"raw"`
	ExifToolStdout *string        `json:"exiftoolStdout,omitempty"`
	ExifToolStderr *string        `json:"exiftoolStderr,omitempty"`
}

// GPSInfo is only built when both coordinates are numeric.
type GPSInfo struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Altitude  *float64 `json:"altitude"`
	MapURL    string   `json:"mapUrl"`
	EmbedURL  string   `json:"embedUrl"`
	Raw       GPSRaw   `json:"raw"`
}

// GPSRaw keeps the tool's GPS fields as they were reported.
type GPSRaw struct {
	GPSLatitude  interface{} `json:"GPSLatitude"`
	GPSLongitude interface{} `json:"GPSLongitude"`
	GPSAltitude  interface{} `json:"GPSAltitude,omitempty"`
}

type CameraInfo struct {
	Make         *string `json:"make"`
	Model        *string `json:"model"`
	Software     *string `json:"software"`
	Lens         *string `json:"lens"`
	SerialNumber *string `json:"serialNumber"`
}

// TimestampInfo holds UTC ISO-8601 strings, or the tool's text when it
// could not be parsed.
type TimestampInfo struct {
	DateTimeOriginal *string `json:"dateTimeOriginal"`
	CreateDate       *string `json:"createDate"`
	ModifyDate       *string `json:"modifyDate"`
	GPSDateTime      *string `json:"gpsDateTime"`
}

type TechnicalInfo struct {
	ISO          *float64 `json:"iso"`
	Aperture     *float64 `json:"aperture"`
	ShutterSpeed *float64 `json:"shutterSpeed"`
	FocalLength  *float64 `json:"focalLength"`
	ImageWidth   *int64   `json:"imageWidth"`
	ImageHeight  *int64   `json:"imageHeight"`
	Orientation  *int64   `json:"orientation"`
	// FileSize comes from the filesystem, never from the tool.
	FileSize *int64 `json:"fileSize"`
}

type PDFInfo struct {
	Title      *string `json:"title"`
	Author     *string `json:"author"`
	Creator    *string `json:"creator"`
	Producer   *string `json:"producer"`
	CreateDate *string `json:"createDate"`
	ModifyDate *string `json:"modifyDate"`
	PageCount  *int64  `json:"pageCount"`
	FileSize   *int64  `json:"fileSize"`
	PDFVersion *string `json:"pdfVersion"`
}

// Failure builds a failed result with every section empty.
func Failure(message string) *Result {
	return &Result{Error: &message}
}

// ErrorMessage returns the error text, or "" for successful results.
func (r *Result) ErrorMessage() string {
	if r.Error == nil {
		return ""
	}
	return *r.Error
}

// Outcome classifies r as ok, no_metadata or failed.
func (r *Result) Outcome() string {
	switch {
	case !r.Success:
		return OutcomeFailed
	case !r.HasMetadata:
		return OutcomeNoMetadata
	default:
		return OutcomeOK
	}
}
