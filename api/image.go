package api

import "github.com/dfryer1193/camroll/gallery/domain"

type ImageRecord struct {
	ID         int64  `json:"id"`
	Locator    string `json:"locator"`
	CapturedAt int64  `json:"captured_at"`
}

// ImageProto is the body of a single insert. CapturedAt defaults to the
// server's clock when omitted.
type ImageProto struct {
	Locator    string `json:"locator" binding:"required"`
	CapturedAt *int64 `json:"captured_at"`
}

type ImportProto struct {
	Locators []string `json:"locators" binding:"required,min=1,dive,required"`
}

type Created struct {
	ID int64 `json:"id"`
}

type Imported struct {
	IDs []int64 `json:"ids"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func FromRecord(r domain.ImageRecord) ImageRecord {
	return ImageRecord{
		ID:         int64(r.ID),
		Locator:    r.Locator,
		CapturedAt: r.CapturedAt,
	}
}

func FromRecords(records []domain.ImageRecord) []ImageRecord {
	out := make([]ImageRecord, 0, len(records))
	for _, r := range records {
		out = append(out, FromRecord(r))
	}
	return out
}

func FromIDs(ids []domain.RecordID) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		out = append(out, int64(id))
	}
	return out
}
