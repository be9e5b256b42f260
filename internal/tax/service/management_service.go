package service

import (
	"context"
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/gymdesk/internal/clock"
	taxdomain "github.com/smallbiznis/gymdesk/internal/tax/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  taxdomain.Repository
	Clock clock.Clock
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	repo  taxdomain.Repository
	clock clock.Clock

	mu        sync.RWMutex
	observers []taxdomain.CatalogObserver
}

func NewService(p ServiceParam) taxdomain.Service {
	return &Service{
		log:   p.Log.Named("tax.service"),
		genID: p.GenID,
		repo:  p.Repo,
		clock: p.Clock,
	}
}

func (s *Service) Subscribe(observer taxdomain.CatalogObserver) {
	if observer == nil {
		return
	}
	s.mu.Lock()
	s.observers = append(s.observers, observer)
	s.mu.Unlock()
}

func (s *Service) Catalog(ctx context.Context) ([]taxdomain.TaxSetting, error) {
	return s.repo.Catalog(ctx)
}

func (s *Service) List(ctx context.Context, req taxdomain.ListRequest) ([]taxdomain.Response, error) {
	filter := taxdomain.ListRequest{
		Name:     strings.TrimSpace(req.Name),
		Code:     strings.TrimSpace(req.Code),
		IsActive: req.IsActive,
		SortBy:   strings.TrimSpace(req.SortBy),
		OrderBy:  strings.TrimSpace(req.OrderBy),
	}
	if req.TaxMode != "" {
		mode, err := parseTaxMode(req.TaxMode)
		if err != nil {
			return nil, err
		}
		filter.TaxMode = mode
	}

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]taxdomain.Response, 0, len(items))
	for _, item := range items {
		resp = append(resp, toResponse(&item))
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*taxdomain.Response, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) Create(ctx context.Context, req taxdomain.CreateRequest) (*taxdomain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, taxdomain.ErrInvalidName
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		code = slug.Make(name)
	} else {
		code = slug.Make(code)
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	now := s.clock.Now().UTC()
	record := &taxdomain.TaxSetting{
		ID:          s.genID.Generate(),
		Name:        name,
		Code:        code,
		Rate:        req.Rate,
		IsInclusive: req.IsInclusive,
		IsActive:    isActive,
		SortOrder:   req.SortOrder,
		Description: normalizeDescription(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}

	s.log.Info("tax setting created",
		zap.String("tax_id", record.ID.String()),
		zap.String("code", record.Code),
		zap.String("tax_mode", string(record.Mode())),
		zap.Float64("rate", record.Rate),
	)
	s.notify(ctx)

	resp := toResponse(record)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req taxdomain.UpdateRequest) (*taxdomain.Response, error) {
	item, err := s.find(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, taxdomain.ErrInvalidName
		}
		item.Name = name
	}
	if req.Rate != nil {
		item.Rate = *req.Rate
	}
	if req.SortOrder != nil {
		item.SortOrder = *req.SortOrder
	}
	if req.Description != nil {
		item.Description = normalizeDescription(req.Description)
	}

	item.UpdatedAt = s.clock.Now().UTC()
	if err := item.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	s.notify(ctx)

	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) Deactivate(ctx context.Context, id string) (*taxdomain.Response, error) {
	return s.setActive(ctx, id, false)
}

func (s *Service) Activate(ctx context.Context, id string) (*taxdomain.Response, error) {
	return s.setActive(ctx, id, true)
}

func (s *Service) setActive(ctx context.Context, id string, active bool) (*taxdomain.Response, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if item.IsActive != active {
		item.IsActive = active
		item.UpdatedAt = s.clock.Now().UTC()
		if err := s.repo.Update(ctx, item); err != nil {
			return nil, err
		}
		s.notify(ctx)
	}

	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) find(ctx context.Context, id string) (*taxdomain.TaxSetting, error) {
	taxID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || taxID == 0 {
		return nil, taxdomain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, taxID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, taxdomain.ErrNotFound
	}
	return item, nil
}

func (s *Service) notify(ctx context.Context) {
	s.mu.RLock()
	observers := append([]taxdomain.CatalogObserver(nil), s.observers...)
	s.mu.RUnlock()

	for _, observer := range observers {
		observer.CatalogChanged(ctx)
	}
}

func toResponse(setting *taxdomain.TaxSetting) taxdomain.Response {
	return taxdomain.Response{
		ID:          setting.ID.String(),
		Code:        setting.Code,
		Name:        setting.Name,
		Rate:        setting.Rate,
		IsInclusive: setting.IsInclusive,
		TaxMode:     setting.Mode(),
		IsActive:    setting.IsActive,
		SortOrder:   setting.SortOrder,
		Description: setting.Description,
		CreatedAt:   setting.CreatedAt,
		UpdatedAt:   setting.UpdatedAt,
	}
}

func parseTaxMode(value taxdomain.TaxMode) (taxdomain.TaxMode, error) {
	switch taxdomain.TaxMode(strings.ToLower(strings.TrimSpace(string(value)))) {
	case taxdomain.TaxModeInclusive:
		return taxdomain.TaxModeInclusive, nil
	case taxdomain.TaxModeExclusive:
		return taxdomain.TaxModeExclusive, nil
	default:
		return "", taxdomain.ErrInvalidTaxMode
	}
}

func normalizeDescription(value *string) *string {
	if value == nil {
		return nil
	}
	description := strings.TrimSpace(*value)
	if description == "" {
		return nil
	}
	return &description
}
