// Package documents assembles renderable documents from backend records.
package documents

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/diewo77/proposal-desk/internal/document"
	"github.com/diewo77/proposal-desk/internal/models"
	"github.com/diewo77/proposal-desk/internal/signature"
)

// Backend is the part of the REST gateway documents are built from.
type Backend interface {
	GetContract(ctx context.Context, id int64) (models.Contract, error)
	GetProposal(ctx context.Context, id int64) (models.Proposal, error)
	FetchImage(ctx context.Context, ref string) ([]byte, error)
}

// Service loads saved proposals and contracts from the backend and lays them
// out as documents.
type Service struct {
	backend Backend
	logger  *zap.Logger
}

func NewService(backend Backend, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{backend: backend, logger: logger}
}

// Contract loads a contract ready to render: the proposal is nested and
// signatures are inline data URIs. A proposal or signature that cannot be
// loaded is left out rather than failing the document.
func (s *Service) Contract(ctx context.Context, id int64) (models.Contract, error) {
	c, err := s.backend.GetContract(ctx, id)
	if err != nil {
		return models.Contract{}, err
	}

	var g errgroup.Group
	if c.Proposal.ID != 0 && c.Proposal.ClientName == "" && len(c.Proposal.Categories) == 0 {
		g.Go(func() error {
			p, err := s.backend.GetProposal(ctx, c.Proposal.ID)
			if err != nil {
				s.logger.Warn("contract proposal unavailable",
					zap.Int64("contract_id", id), zap.Int64("proposal_id", c.Proposal.ID), zap.Error(err))
				return nil
			}
			c.Proposal.Proposal = p
			return nil
		})
	}
	g.Go(func() error {
		c.ClientSignature = s.inlineSignature(ctx, id, c.ClientSignature)
		return nil
	})
	g.Go(func() error {
		c.ContractorSignature = s.inlineSignature(ctx, id, c.ContractorSignature)
		return nil
	})
	_ = g.Wait()
	return c, nil
}

func (s *Service) inlineSignature(ctx context.Context, contractID int64, ref string) string {
	if ref == "" || signature.IsDataURI(ref) {
		return ref
	}
	data, err := s.backend.FetchImage(ctx, ref)
	if err == nil {
		var uri string
		if uri, err = signature.EncodeDataURI(data); err == nil {
			return uri
		}
	}
	s.logger.Warn("signature image unavailable",
		zap.Int64("contract_id", contractID), zap.String("ref", ref), zap.Error(err))
	return ""
}

// ContractDocument builds the document tree of a saved contract.
func (s *Service) ContractDocument(ctx context.Context, id int64, now time.Time) (document.Document, error) {
	c, err := s.Contract(ctx, id)
	if err != nil {
		return document.Document{}, err
	}
	return document.BuildContract(document.FromContract(c), now), nil
}

// ProposalDocument builds the document tree of a saved proposal.
func (s *Service) ProposalDocument(ctx context.Context, id int64, now time.Time) (document.Document, error) {
	p, err := s.backend.GetProposal(ctx, id)
	if err != nil {
		return document.Document{}, err
	}
	return document.BuildProposal(p, now), nil
}
