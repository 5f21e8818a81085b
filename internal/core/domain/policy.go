package domain

// CanViewContact decides whether viewer may see profile's contact fields.
// grant is the viewer's disclosure request for the profile, or nil.
//
// Precedence: owner, then account-level premium, then an approved
// disclosure request. It reads nothing but its arguments.
func CanViewContact(viewer string, viewerPremium bool, profile Profile, grant *DisclosureRequest) bool {
	if viewer != "" && viewer == profile.OwnerEmail {
		return true
	}
	if viewerPremium {
		return true
	}
	if grant == nil {
		return false
	}
	return grant.RequesterEmail == viewer && grant.BiodataID == profile.BiodataID && grant.Approved()
}
