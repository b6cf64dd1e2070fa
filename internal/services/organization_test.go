package services

import (
	"testing"

	"engage/internal/models"
	apperrors "engage/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrganizationCreate(t *testing.T) {
	db := setupTestDB(t)

	service := NewOrganizationServiceWithDB(db)

	org, err := service.Create("测试公司", "test-co")
	require.NoError(t, err)
	assert.Equal(t, models.OrgStatusActive, org.Status)

	_, err = service.Create("另一家公司", "test-co")
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))

	_, err = service.Create("X", "ok-slug")
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	_, err = service.Create("合法名称", "Bad_Slug")
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestOrganizationSetStatus(t *testing.T) {
	db := setupTestDB(t)

	service := NewOrganizationServiceWithDB(db)
	org, err := service.Create("测试公司", "test-co")
	require.NoError(t, err)

	// 下线即置disabled，不做物理删除
	disabled, err := service.SetStatus(org.ID, models.OrgStatusDisabled)
	require.NoError(t, err)
	assert.Equal(t, models.OrgStatusDisabled, disabled.Status)

	got, err := service.GetByID(org.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrgStatusDisabled, got.Status)

	_, err = service.SetStatus(org.ID, "deleted")
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	_, err = service.SetStatus(999, models.OrgStatusActive)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}
