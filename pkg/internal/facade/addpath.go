package facade

import (
	"context"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/yeisme/oxygen/pkg/internal/types"
)

// AddPath 将宿主路径加入项目：并发执行 stat 与 is-directory，二者都成功后才以 isActive=true 写入.
// 任一步失败立即返回，不会写入半成品记录.
func AddPath(ctx context.Context, api API, path string) (types.FileDetails, error) {
	if path == "" {
		return types.FileDetails{}, invalid("path is required")
	}

	var (
		st    types.StatResult
		isDir bool
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		st, err = api.Stat(gctx, path)

		return err
	})

	g.Go(func() error {
		var err error
		isDir, err = api.IsDirectory(gctx, path)

		return err
	})

	if err := g.Wait(); err != nil {
		return types.FileDetails{}, err
	}

	details := types.FileDetails{
		Filename:       filepath.Base(path),
		Path:           path,
		IsActive:       true,
		IsDirectory:    &isDir,
		CreatedAt:      &st.CreationTime,
		LastModifiedAt: &st.ModificationTime,
	}

	if st.Extension != "" {
		ext := st.Extension
		details.Extension = &ext
	}

	if err := api.UpsertFileDetails(ctx, details); err != nil {
		return types.FileDetails{}, err
	}

	return details, nil
}
