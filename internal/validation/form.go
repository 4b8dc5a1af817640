package validation

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/weiawesome/ward-rooms/internal/domain"
)

// ImagesField is the multipart field carrying room images.
const ImagesField = "images"

// formReader reads typed values out of multipart text fields, recording a
// field error for every value it cannot parse.
type formReader struct {
	values map[string][]string
	errs   *domain.ValidationError
}

func newFormReader(values map[string][]string) *formReader {
	return &formReader{values: values, errs: &domain.ValidationError{}}
}

func (f *formReader) raw(key string) (string, bool) {
	vs, ok := f.values[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

func (f *formReader) str(key string) *string {
	v, ok := f.raw(key)
	if !ok {
		return nil
	}
	return &v
}

func (f *formReader) float(key string) *float64 {
	v, ok := f.raw(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		f.errs.Add(key, fmt.Sprintf("invalid number format for %s", key))
		return nil
	}
	return &n
}

// jsonField decodes a JSON-encoded field into dst and reports whether it was present.
func (f *formReader) jsonField(key string, dst interface{}) bool {
	v, ok := f.raw(key)
	if !ok || strings.TrimSpace(v) == "" {
		return false
	}
	if err := json.Unmarshal([]byte(v), dst); err != nil {
		f.errs.Add(key, fmt.Sprintf("invalid JSON format for %s", key))
		return false
	}
	return true
}

// CreateRequestFromForm parses and validates a multipart room creation form.
func (val *Validator) CreateRequestFromForm(values map[string][]string) (*domain.CreateRoomRequest, error) {
	f := newFormReader(values)

	req := &domain.CreateRoomRequest{
		RentAmount: f.float("rentAmount"),
	}
	for key, dst := range map[string]*string{
		"roomName":       &req.RoomName,
		"hospitalBranch": &req.HospitalBranch,
		"floorName":      &req.FloorName,
		"roomNumber":     &req.RoomNumber,
		"wingBuilding":   &req.WingBuilding,
		"roomCategory":   &req.RoomCategory,
		"customCategory": &req.CustomCategory,
	} {
		if v := f.str(key); v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	if v := f.str("status"); v != nil {
		req.Status = domain.RoomStatus(strings.TrimSpace(*v))
	}

	var charges domain.AdditionalCharges
	if f.jsonField("additionalCharges", &charges) {
		req.AdditionalCharges = &charges
	}
	var capacity domain.Capacity
	if f.jsonField("capacity", &capacity) {
		req.Capacity = &capacity
	}
	f.jsonField("packageRates", &req.PackageRates)
	f.jsonField("facilities", &req.Facilities)

	if err := merge(f.errs, val.Struct(req)); err != nil {
		return nil, err
	}
	return req, nil
}

// UpdateRequestFromForm parses and validates a multipart partial update form.
func (val *Validator) UpdateRequestFromForm(values map[string][]string) (*domain.UpdateRoomRequest, error) {
	f := newFormReader(values)

	req := &domain.UpdateRoomRequest{
		RoomName:       trimmed(f.str("roomName")),
		HospitalBranch: trimmed(f.str("hospitalBranch")),
		FloorName:      trimmed(f.str("floorName")),
		RoomNumber:     trimmed(f.str("roomNumber")),
		WingBuilding:   trimmed(f.str("wingBuilding")),
		RoomCategory:   trimmed(f.str("roomCategory")),
		CustomCategory: trimmed(f.str("customCategory")),
		RentAmount:     f.float("rentAmount"),
	}
	if v := f.str("status"); v != nil {
		status := domain.RoomStatus(strings.TrimSpace(*v))
		req.Status = &status
	}

	var charges domain.AdditionalCharges
	if f.jsonField("additionalCharges", &charges) {
		req.AdditionalCharges = &charges
	}
	var capacity domain.Capacity
	if f.jsonField("capacity", &capacity) {
		req.Capacity = &capacity
	}
	f.jsonField("packageRates", &req.PackageRates)
	f.jsonField("facilities", &req.Facilities)

	if err := merge(f.errs, val.Struct(req)); err != nil {
		return nil, err
	}
	return req, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// ImagesFromForm opens every uploaded image. The returned cleanup closes them
// and must be called once the uploads have been consumed.
func ImagesFromForm(form *multipart.Form) ([]domain.ImageUpload, func(), error) {
	if form == nil {
		return nil, func() {}, nil
	}

	headers := form.File[ImagesField]
	images := make([]domain.ImageUpload, 0, len(headers))
	files := make([]multipart.File, 0, len(headers))
	cleanup := func() {
		for _, file := range files {
			_ = file.Close()
		}
	}

	for _, fh := range headers {
		file, err := fh.Open()
		if err != nil {
			cleanup()
			return nil, func() {}, domain.NewValidationError(ImagesField, fmt.Sprintf("cannot read %s", fh.Filename))
		}
		files = append(files, file)
		images = append(images, domain.ImageUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Content:     file,
		})
	}
	return images, cleanup, nil
}
