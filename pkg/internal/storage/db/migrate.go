package db

import (
	"context"
	"fmt"

	"github.com/yeisme/oxygen/pkg/internal/model"
)

// Migrate 创建或升级表结构，幂等.
func (c *Client) Migrate(ctx context.Context) error {
	if err := c.WithContext(ctx).AutoMigrate(&model.ProjectFile{}, &model.KVEntry{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	return nil
}
