package services

import (
	"testing"

	apperrors "engage/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestSegmentCRUD(t *testing.T) {
	db := setupTestDB(t)
	orgA := createTestOrg(t, db, "acme")
	orgB := createTestOrg(t, db, "globex")

	service := NewSegmentService(db)

	segment, err := service.Create(orgA.ID, "活跃用户", "近30天有互动", datatypes.JSON(`{"active_days":30}`))
	require.NoError(t, err)

	// 组织隔离
	_, err = service.GetByID(orgB.ID, segment.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	updated, err := service.Update(orgA.ID, segment.ID, "高活跃用户", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "高活跃用户", updated.Name)

	_, err = service.Create(orgA.ID, "", "", nil)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestSegmentDeleteBlockedWhenReferenced(t *testing.T) {
	db := setupTestDB(t)
	org := createTestOrg(t, db, "acme")

	segmentService := NewSegmentService(db)
	campaignService := NewCampaignService(db, nil)

	segment, err := segmentService.Create(org.ID, "目标分群", "", nil)
	require.NoError(t, err)

	_, err = campaignService.Create(org.ID, "引用分群的活动", "", nil, &segment.ID)
	require.NoError(t, err)

	// 被活动引用的分群不可删除
	err = segmentService.Delete(org.ID, segment.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestContactCreateEmailUniquePerOrg(t *testing.T) {
	db := setupTestDB(t)
	orgA := createTestOrg(t, db, "acme")
	orgB := createTestOrg(t, db, "globex")

	service := NewContactService(db)

	_, err := service.Create(orgA.ID, "lead@example.com", "线索", nil)
	require.NoError(t, err)

	// 同组织邮箱重复
	_, err = service.Create(orgA.ID, "lead@example.com", "重复线索", nil)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))

	// 不同组织互不影响
	_, err = service.Create(orgB.ID, "lead@example.com", "他组织线索", nil)
	assert.NoError(t, err)

	_, err = service.Create(orgA.ID, "not-an-email", "", nil)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestContactUpdateAndSearch(t *testing.T) {
	db := setupTestDB(t)
	org := createTestOrg(t, db, "acme")

	service := NewContactService(db)

	contact, err := service.Create(org.ID, "alice@example.com", "爱丽丝", nil)
	require.NoError(t, err)
	assert.True(t, contact.Subscribed)

	updated, err := service.Update(org.ID, contact.ID, "爱丽丝", datatypes.JSON(`{"city":"上海"}`), false)
	require.NoError(t, err)
	assert.False(t, updated.Subscribed)

	_, err = service.Create(org.ID, "bob@example.com", "鲍勃", nil)
	require.NoError(t, err)

	contacts, total, err := service.GetWithPage(org.ID, "alice", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "alice@example.com", contacts[0].Email)
}
