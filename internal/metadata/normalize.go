package metadata

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bstardust/geometalens/internal/exiftool"
	"github.com/bstardust/geometalens/internal/logger"
)

const (
	mapURLFormat   = "https://www.google.com/maps?q=%s,%s"
	embedURLFormat = "https://maps.google.com/maps?q=%s,%s&t=&z=13&ie=UTF8&iwloc=&output=embed"
)

// Normalizer maps raw exiftool records onto Result.
type Normalizer struct {
	stat func(name string) (os.FileInfo, error)
}

// NewNormalizer creates a Normalizer that reads file sizes with os.Stat.
func NewNormalizer() *Normalizer {
	return &Normalizer{stat: os.Stat}
}

// FromOutput normalizes a decoded tool invocation. Zero records yield a
// successful result without metadata that carries the tool's output.
func (n *Normalizer) FromOutput(out *exiftool.Output, path string) *Result {
	if len(out.Records) == 0 {
		res := n.Normalize(nil, path)
		res.Raw = []interface{}{}
		res.ExifToolStdout = &out.Stdout
		res.ExifToolStderr = nonEmpty(out.Stderr)
		return res
	}

	if out.Records[0] == nil {
		return NormalizeError(&exiftool.ParseError{
			Stdout: out.Stdout,
			Stderr: out.Stderr,
			Err:    errors.New("record 0 is null"),
		})
	}

	res := n.Normalize(out.Records[0], path)
	if res.Success {
		res.ExifToolStderr = nonEmpty(out.Stderr)
	}
	return res
}

// Normalize builds a Result from one raw record. A nil record means the
// tool found nothing. Panics are recovered into a failed Result.
func (n *Normalizer) Normalize(record map[string]interface{}, path string) (res *Result) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Normalizing metadata for %s panicked: %v", path, r)
			res = Failure(fmt.Sprint(r))
		}
	}()

	if record == nil {
		return &Result{Success: true}
	}

	rec := Record(record)
	res = &Result{
		Success:     true,
		HasMetadata: true,
		GPS:         gpsInfo(rec),
		Camera:      cameraInfo(rec),
		Timestamp:   timestampInfo(rec),
		Technical:   n.technicalInfo(rec, path),
		Raw:         record,
	}
	if isPDF(rec) {
		res.PDFInfo = pdfInfo(rec)
	}
	return res
}

// NormalizeError turns a per-request invocation error into a failed Result.
func NormalizeError(err error) *Result {
	var perr *exiftool.ParseError
	if errors.As(err, &perr) {
		res := Failure(perr.Error())
		if perr.Err != nil {
			res.Details = perr.Err.Error()
		}
		res.ExifToolStdout = &perr.Stdout
		res.ExifToolStderr = nonEmpty(perr.Stderr)
		res.Raw = perr.Stdout
		return res
	}
	return Failure(err.Error())
}

func isPDF(rec Record) bool {
	mime, _ := rec["MIMEType"].(string)
	fileType, _ := rec["FileType"].(string)
	return mime == "application/pdf" || fileType == "PDF"
}

func gpsInfo(rec Record) *GPSInfo {
	lat, ok := rec.Number("GPSLatitude")
	if !ok {
		return nil
	}
	lon, ok := rec.Number("GPSLongitude")
	if !ok {
		return nil
	}

	latStr, lonStr := formatFloat(lat), formatFloat(lon)
	return &GPSInfo{
		Latitude:  lat,
		Longitude: lon,
		Altitude:  rec.Float("GPSAltitude"),
		MapURL:    fmt.Sprintf(mapURLFormat, latStr, lonStr),
		EmbedURL:  fmt.Sprintf(embedURLFormat, latStr, lonStr),
		Raw: GPSRaw{
			GPSLatitude:  rec["GPSLatitude"],
			GPSLongitude: rec["GPSLongitude"],
			GPSAltitude:  rec["GPSAltitude"],
		},
	}
}

func cameraInfo(rec Record) *CameraInfo {
	return &CameraInfo{
		Make:         rec.String("Make", "CameraMake"),
		Model:        rec.String("Model", "CameraModel"),
		Software:     rec.String("Software"),
		Lens:         rec.String("Lens", "LensModel"),
		SerialNumber: rec.String("SerialNumber", "BodySerialNumber"),
	}
}

func timestampInfo(rec Record) *TimestampInfo {
	return &TimestampInfo{
		DateTimeOriginal: rec.Date("DateTimeOriginal", "CreateDate"),
		CreateDate:       rec.Date("CreateDate", "FileCreateDate"),
		ModifyDate:       rec.Date("ModifyDate", "FileModifyDate"),
		GPSDateTime:      rec.Date("GPSDateTime"),
	}
}

func (n *Normalizer) technicalInfo(rec Record, path string) *TechnicalInfo {
	tech := &TechnicalInfo{
		ISO:          rec.Float("ISO", "ISOValue"),
		Aperture:     rec.Float("FNumber", "Aperture"),
		ShutterSpeed: rec.Float("ExposureTime"),
		FocalLength:  rec.Float("FocalLength"),
		ImageWidth:   rec.Int("ImageWidth", "ExifImageWidth"),
		ImageHeight:  rec.Int("ImageHeight", "ExifImageHeight"),
		Orientation:  rec.Int("Orientation"),
	}

	if info, err := n.stat(path); err == nil {
		size := info.Size()
		tech.FileSize = &size
	} else {
		logger.Debug("Could not stat %s: %v", path, err)
	}
	return tech
}

func pdfInfo(rec Record) *PDFInfo {
	return &PDFInfo{
		Title:      rec.String("Title"),
		Author:     rec.String("Author"),
		Creator:    rec.String("Creator"),
		Producer:   rec.String("Producer"),
		CreateDate: rec.Date("CreateDate", "FileCreateDate"),
		ModifyDate: rec.Date("ModifyDate", "FileModifyDate"),
		PageCount:  rec.Int("PageCount"),
		FileSize:   rec.Int("FileSize"),
		PDFVersion: rec.String("PDFVersion"),
	}
}

func nonEmpty(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
