package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/docstore"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/repository"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/settings"
)

// SettingsService handles the single-document settings stores: model settings, the
// sensitivity configuration, the model defaults and the asset defaults. It also serves
// the sensitivity configuration file the model backend reads.
type SettingsService struct {
	modelSettingsRepo     *repository.SettingsRepository
	sensitivityConfigRepo *repository.SettingsRepository
	defaultsRepo          *repository.SettingsRepository
	assetDefaultsRepo     *repository.SettingsRepository
	catalogue             settings.Catalogue
	sensitivityFile       *settings.JSONFile
}

// NewSettingsService creates a new SettingsService with the provided repository dependencies.
func NewSettingsService(
	modelSettingsRepo *repository.SettingsRepository,
	sensitivityConfigRepo *repository.SettingsRepository,
	defaultsRepo *repository.SettingsRepository,
	assetDefaultsRepo *repository.SettingsRepository,
	catalogue settings.Catalogue,
	sensitivityFile *settings.JSONFile,
) *SettingsService {
	return &SettingsService{
		modelSettingsRepo:     modelSettingsRepo,
		sensitivityConfigRepo: sensitivityConfigRepo,
		defaultsRepo:          defaultsRepo,
		assetDefaultsRepo:     assetDefaultsRepo,
		catalogue:             catalogue,
		sensitivityFile:       sensitivityFile,
	}
}

// GetModelSettings returns the stored model settings without _id, or nil when none exist.
func (s *SettingsService) GetModelSettings(ctx context.Context) (map[string]any, error) {
	doc, err := s.modelSettingsRepo.Get(ctx)
	if err != nil || doc == nil {
		return nil, err
	}
	return doc.Without(docstore.IDField), nil
}

// SaveModelSettings upserts the body onto the model settings document.
func (s *SettingsService) SaveModelSettings(ctx context.Context, body map[string]any) (model.SettingsSaveResult, error) {
	if body == nil {
		return model.SettingsSaveResult{}, fmt.Errorf("%w: settings are required", apperrors.ErrInvalidBody)
	}
	set := docstore.Document(body).Without(docstore.IDField)
	set[model.FieldUpdatedAt] = time.Now().UTC()
	return s.save(ctx, s.modelSettingsRepo, set)
}

// GetSensitivityInputs returns the shared sensitivity configuration. A missing document,
// or one that cannot be read, yields the default structure.
func (s *SettingsService) GetSensitivityInputs(ctx context.Context) map[string]any {
	doc, err := s.sensitivityConfigRepo.Get(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("could not read sensitivity configuration, returning defaults")
		return model.DefaultSensitivityConfig()
	}
	if doc == nil {
		return model.DefaultSensitivityConfig()
	}
	return doc.Without(docstore.IDField, model.FieldUpdatedAt)
}

// SaveSensitivityInputs replaces the fields of the shared sensitivity configuration.
// updated_at is stored as an RFC 3339 string, as the model service expects.
func (s *SettingsService) SaveSensitivityInputs(ctx context.Context, body map[string]any) (model.SettingsSaveResult, error) {
	if body == nil {
		return model.SettingsSaveResult{}, fmt.Errorf("%w: sensitivity configuration is required", apperrors.ErrInvalidBody)
	}
	set := docstore.Document(body).Without(docstore.IDField)
	set[model.FieldUniqueID] = "default"
	set[model.FieldUpdatedAt] = time.Now().UTC().Format(time.RFC3339Nano)
	return s.save(ctx, s.sensitivityConfigRepo, set)
}

func (s *SettingsService) save(ctx context.Context, repo *repository.SettingsRepository, set docstore.Document) (model.SettingsSaveResult, error) {
	res, err := repo.Set(ctx, set)
	if err != nil {
		return model.SettingsSaveResult{}, err
	}
	return model.SettingsSaveResult{
		Matched:  res.Matched,
		Modified: res.Modified,
		Upserted: res.Upserted > 0,
	}, nil
}

// GetDefaults lists the stored defaults in name order. Values are rendered as strings
// and each setting carries its allowed values from the option catalogue.
// Returns apperrors.ErrDefaultsNotFound when no defaults document is stored.
func (s *SettingsService) GetDefaults(ctx context.Context) ([]model.DefaultSetting, error) {
	doc, err := s.defaultsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperrors.ErrDefaultsNotFound
	}

	names := make([]string, 0, len(doc))
	for k := range doc {
		if k != docstore.IDField {
			names = append(names, k)
		}
	}
	sort.Strings(names)

	out := make([]model.DefaultSetting, 0, len(names))
	for _, name := range names {
		options := s.catalogue.Options(name)
		if options == nil {
			options = []string{}
		}
		out = append(out, model.DefaultSetting{
			Name:         name,
			CurrentValue: displayValue(doc[name]),
			Options:      options,
		})
	}
	return out, nil
}

// SaveDefaults writes the given settings. String values that spell a boolean, a number
// or null are stored as that type.
func (s *SettingsService) SaveDefaults(ctx context.Context, defaults []model.DefaultSetting) error {
	if len(defaults) == 0 {
		return fmt.Errorf("%w: defaults are required", apperrors.ErrInvalidBody)
	}
	set := docstore.Document{}
	for _, d := range defaults {
		if d.Name == "" {
			continue
		}
		if err := docstore.ValidateFieldName(d.Name); err != nil {
			return fmt.Errorf("%w: %s", apperrors.ErrInvalidBody, d.Name)
		}
		set[d.Name] = coerceValue(d.CurrentValue)
	}
	if len(set) == 0 {
		return fmt.Errorf("%w: defaults are required", apperrors.ErrInvalidBody)
	}
	_, err := s.defaultsRepo.Set(ctx, set)
	return err
}

// assetDefaultsID is the _id of a CONFIG_assetDefaults document created by initialization.
const assetDefaultsID = "asset_defaults"

// GetAssetDefaults returns the stored asset defaults without _id.
// Returns apperrors.ErrAssetDefaultsNotFound when none are stored and
// apperrors.ErrInvalidAssetDefaults when the document lacks assetDefaults or
// platformDefaults.
func (s *SettingsService) GetAssetDefaults(ctx context.Context) (map[string]any, error) {
	doc, err := s.assetDefaultsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperrors.ErrAssetDefaultsNotFound
	}
	if !hasAssetDefaultsStructure(doc) {
		keys := make([]string, 0, len(doc))
		for k := range doc {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		log.Error().
			Bool("has_asset_defaults", doc[settings.KeyAssetDefaults] != nil).
			Bool("has_platform_defaults", doc[settings.KeyPlatformDefaults] != nil).
			Strs("keys", keys).
			Msg("invalid asset defaults structure in store")
		return nil, apperrors.ErrInvalidAssetDefaults
	}
	return doc.Without(docstore.IDField), nil
}

// SaveAssetDefaults writes the body over the stored asset defaults, creating the document
// when none exists. metadata.lastUpdated is set and metadata.version defaulted.
func (s *SettingsService) SaveAssetDefaults(ctx context.Context, body map[string]any) error {
	if !hasAssetDefaultsStructure(body) {
		return apperrors.ErrInvalidAssetDefaults
	}
	set := docstore.Document(body).Without(docstore.IDField)
	meta, _ := docstore.Document(body).Doc(settings.KeyMetadata)
	set[settings.KeyMetadata] = settings.StampMetadata(meta, time.Now())

	_, err := s.assetDefaultsRepo.Set(ctx, set)
	return err
}

// InitializeAssetDefaults stores the built-in asset defaults and returns the new
// document id. Returns apperrors.ErrAssetDefaultsExist when a document is already stored.
func (s *SettingsService) InitializeAssetDefaults(ctx context.Context) (string, error) {
	existing, err := s.assetDefaultsRepo.Get(ctx)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "", apperrors.ErrAssetDefaultsExist
	}

	doc, err := settings.InitialAssetDefaults(time.Now())
	if err != nil {
		return "", err
	}
	doc[docstore.IDField] = assetDefaultsID
	id, err := s.assetDefaultsRepo.Insert(ctx, doc)
	if errors.Is(err, docstore.ErrDuplicateID) {
		return "", apperrors.ErrAssetDefaultsExist
	}
	return id, err
}

func hasAssetDefaultsStructure(doc map[string]any) bool {
	return doc[settings.KeyAssetDefaults] != nil && doc[settings.KeyPlatformDefaults] != nil
}

// GetSensitivityConfigFile reads the sensitivity configuration file of the model backend.
func (s *SettingsService) GetSensitivityConfigFile() (any, error) {
	return s.sensitivityFile.Load()
}

// SaveSensitivityConfigFile replaces the sensitivity configuration file.
func (s *SettingsService) SaveSensitivityConfigFile(config any) error {
	if config == nil {
		return fmt.Errorf("%w: sensitivity configuration is required", apperrors.ErrInvalidBody)
	}
	if err := s.sensitivityFile.Save(config); err != nil {
		return err
	}
	log.Info().Str("path", s.sensitivityFile.Path()).Msg("sensitivity config file saved")
	return nil
}

func displayValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	}
	if f, ok := docstore.ToFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

func coerceValue(v any) any {
	str, ok := v.(string)
	if !ok {
		return v
	}
	switch str {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	if trimmed := strings.TrimSpace(str); trimmed != "" {
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return f
		}
	}
	return str
}
