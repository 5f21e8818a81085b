package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bandhan/matrimony-api/internal/core/domain"
	"github.com/bandhan/matrimony-api/internal/core/ports"
)

const maxVisibilityBatch = 100

// ContactService gates profile contact fields behind domain.CanViewContact.
// Privileges and disclosure state are read fresh on every call.
type ContactService struct {
	profiles    ports.ProfileRepository
	disclosures ports.DisclosureRepository
	roles       ports.RoleResolver
}

func NewContactService(profiles ports.ProfileRepository, disclosures ports.DisclosureRepository, roles ports.RoleResolver) *ContactService {
	return &ContactService{profiles: profiles, disclosures: disclosures, roles: roles}
}

// Contact returns the contact fields of biodataID if viewer may see them,
// domain.ErrForbidden otherwise.
func (s *ContactService) Contact(ctx context.Context, viewer string, biodataID int64) (*domain.Contact, error) {
	priv, err := s.roles.Resolve(ctx, viewer)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.FindByBiodataID(ctx, biodataID)
	if err != nil {
		return nil, err
	}

	var grant *domain.DisclosureRequest
	if viewer != profile.OwnerEmail && !priv.Premium {
		grant, err = s.disclosures.FindByPair(ctx, viewer, biodataID)
		if err != nil && !errors.Is(err, domain.ErrRequestNotFound) {
			return nil, err
		}
	}

	if !domain.CanViewContact(viewer, priv.Premium, *profile, grant) {
		return nil, domain.ErrForbidden
	}
	c := profile.Contact()
	return &c, nil
}

// Visibility evaluates the policy for a batch of profiles with a single
// disclosure lookup. Unknown biodata ids are reported as not visible.
func (s *ContactService) Visibility(ctx context.Context, viewer string, biodataIDs []int64) ([]ports.Visibility, error) {
	if len(biodataIDs) > maxVisibilityBatch {
		return nil, fmt.Errorf("%w: at most %d ids per call", domain.ErrInvalidInput, maxVisibilityBatch)
	}
	priv, err := s.roles.Resolve(ctx, viewer)
	if err != nil {
		return nil, err
	}
	profiles, err := s.profiles.FindByBiodataIDs(ctx, biodataIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*domain.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.BiodataID] = p
	}

	grants := map[int64]*domain.DisclosureRequest{}
	if !priv.Premium {
		approved, err := s.disclosures.ListApprovedFor(ctx, viewer, biodataIDs)
		if err != nil {
			return nil, err
		}
		for _, g := range approved {
			grants[g.BiodataID] = g
		}
	}

	out := make([]ports.Visibility, 0, len(biodataIDs))
	for _, id := range biodataIDs {
		p, ok := byID[id]
		if !ok {
			out = append(out, ports.Visibility{BiodataID: id})
			continue
		}
		out = append(out, ports.Visibility{
			BiodataID: id,
			Visible:   domain.CanViewContact(viewer, priv.Premium, *p, grants[id]),
		})
	}
	return out, nil
}
