package model

// Visitor is a single visitor log entry. It is persisted verbatim as an
// element of the "visitors" JSON document, so the field names match the
// document layout exactly.
type Visitor struct {
	ID           string `json:"id"`
	CardNo       string `json:"cardNo"`
	Name         string `json:"name"`
	Phone        string `json:"phone,omitempty"`
	CompanyName  string `json:"companyName"`
	ToMeet       string `json:"toMeet"`
	Purpose      string `json:"purpose"`
	PhotoDataURL string `json:"photoDataUrl,omitempty"`
	InTime       string `json:"inTime"`
	OutTime      string `json:"outTime,omitempty"`
}

// Present reports whether the visitor has not been checked out yet.
func (v Visitor) Present() bool {
	return v.OutTime == ""
}
