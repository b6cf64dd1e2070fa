package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisQueue Redis队列实现，承载投递任务和数据同步任务
type RedisQueue struct {
	client *redis.Client
	prefix string
}

// JobMessage 队列中的任务消息
type JobMessage struct {
	JobID          string                 `json:"job_id"`
	JobType        string                 `json:"job_type"` // campaign_dispatch / data_sync
	OrganizationID uint                   `json:"organization_id"`
	UserID         uint                   `json:"user_id"`  // 发起人ID
	Username       string                 `json:"username"` // 发起人用户名
	Params         map[string]interface{} `json:"params"`
	Created        int64                  `json:"created"`
	Source         string                 `json:"source"` // 任务来源：api / scheduler
}

// 任务类型常量
const (
	JobTypeCampaignDispatch = "campaign_dispatch"
	JobTypeDataSync         = "data_sync"
)

// Config Redis配置
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	Prefix   string
}

// NewRedisQueue 创建Redis队列实例
func NewRedisQueue(config *Config) *RedisQueue {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
	})

	prefix := config.Prefix
	if prefix == "" {
		prefix = "engage:queue"
	}

	return &RedisQueue{
		client: client,
		prefix: prefix,
	}
}

// Close 关闭Redis连接
func (q *RedisQueue) Close() error {
	return q.client.Close()
}

// Ping 测试Redis连接
func (q *RedisQueue) Ping() error {
	ctx := context.Background()
	return q.client.Ping(ctx).Err()
}

// Enqueue 将任务加入队列
func (q *RedisQueue) Enqueue(jobID, jobType string, organizationID, userID uint, username, source string, params map[string]interface{}) error {
	ctx := context.Background()

	message := JobMessage{
		JobID:          jobID,
		JobType:        jobType,
		OrganizationID: organizationID,
		UserID:         userID,
		Username:       username,
		Params:         params,
		Created:        time.Now().Unix(),
		Source:         source,
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("序列化任务消息失败: %v", err)
	}

	// 加入队列（左侧入队）
	if err := q.client.LPush(ctx, q.getQueueKey(jobType), data).Err(); err != nil {
		return fmt.Errorf("任务入队失败: %v", err)
	}

	// 记录任务状态（用于查询）
	jobKey := q.getJobKey(jobID)
	jobInfo := map[string]interface{}{
		"job_id":          jobID,
		"job_type":        jobType,
		"organization_id": organizationID,
		"status":          "queued",
		"queued_at":       time.Now().Unix(),
	}
	if err := q.client.HSet(ctx, jobKey, jobInfo).Err(); err != nil {
		return fmt.Errorf("记录任务状态失败: %v", err)
	}

	// 设置任务过期时间（24小时）
	q.client.Expire(ctx, jobKey, 24*time.Hour)

	return nil
}

// UpdateJobStatus 更新任务状态
func (q *RedisQueue) UpdateJobStatus(jobID, status string) error {
	ctx := context.Background()

	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now().Unix(),
	}
	if status == "running" {
		updates["started_at"] = time.Now().Unix()
	} else if status == "success" || status == "failed" {
		updates["finished_at"] = time.Now().Unix()
	}

	return q.client.HSet(ctx, q.getJobKey(jobID), updates).Err()
}

// GetJobStatus 获取任务状态
func (q *RedisQueue) GetJobStatus(jobID string) (map[string]string, error) {
	ctx := context.Background()

	result, err := q.client.HGetAll(ctx, q.getJobKey(jobID)).Result()
	if err != nil {
		return nil, fmt.Errorf("获取任务状态失败: %v", err)
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("任务不存在")
	}

	return result, nil
}

// GetQueueLength 获取指定类型队列长度
func (q *RedisQueue) GetQueueLength(jobType string) (int64, error) {
	ctx := context.Background()
	return q.client.LLen(ctx, q.getQueueKey(jobType)).Result()
}

func (q *RedisQueue) getQueueKey(jobType string) string {
	return fmt.Sprintf("%s:%s", q.prefix, jobType)
}

func (q *RedisQueue) getJobKey(jobID string) string {
	return fmt.Sprintf("%s:job:%s", q.prefix, jobID)
}
