package domain

// Profile is the biodata record owned by the external catalog. Only the
// identifier, the owner, the premium flag and the gated contact fields are
// meaningful here.
type Profile struct {
	BiodataID    int64  `json:"biodata_id"`
	OwnerEmail   string `json:"owner_email"`
	Premium      bool   `json:"premium"`
	ContactEmail string `json:"contact_email"`
	MobileNumber string `json:"mobile_number"`
}

// Contact holds the fields gated by the access policy.
type Contact struct {
	BiodataID    int64  `json:"biodata_id"`
	ContactEmail string `json:"contact_email"`
	MobileNumber string `json:"mobile_number"`
}

// Contact returns the gated fields of p.
func (p Profile) Contact() Contact {
	return Contact{
		BiodataID:    p.BiodataID,
		ContactEmail: p.ContactEmail,
		MobileNumber: p.MobileNumber,
	}
}
