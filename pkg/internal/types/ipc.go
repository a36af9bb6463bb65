package types

// APIVersion 请求集合版本，增减请求或改变语义时递增.
const APIVersion = "v1"

// RequestName 门面请求名称.
type RequestName string

const (
	ReadDir           RequestName = "read-dir"
	IsDirectory       RequestName = "is-directory"
	Stat              RequestName = "stat"
	UpsertFileDetails RequestName = "upsert-file-details"
	DeleteFile        RequestName = "delete-file"
	GetAllFiles       RequestName = "get-all-files"
	GetFileDetails    RequestName = "get-file-details"
	ReadFile          RequestName = "read-file"
	GetAppVersion     RequestName = "get-app-version"
)

// RequestNames 按固定顺序列出全部请求.
var RequestNames = []RequestName{
	ReadDir,
	IsDirectory,
	Stat,
	UpsertFileDetails,
	DeleteFile,
	GetAllFiles,
	GetFileDetails,
	ReadFile,
	GetAppVersion,
}

// PathRequest 以路径为唯一参数的请求（read-dir、is-directory、stat、delete-file、get-file-details）.
type PathRequest struct {
	Path string `json:"path" rule:"required,hostpath"`
}

// ReadFileRequest read-file 请求，按展示文件名定位.
type ReadFileRequest struct {
	Filename string `json:"filename" rule:"required"`
}

// ReadDirResponse read-dir 响应.
type ReadDirResponse struct {
	Entries []string `json:"entries"`
}

// IsDirectoryResponse is-directory 响应.
type IsDirectoryResponse struct {
	IsDirectory bool `json:"isDirectory"`
}

// FilesResponse get-all-files 响应.
type FilesResponse struct {
	Files []FileDetails `json:"files"`
}

// ReadFileResponse read-file 响应，内容按 UTF-8 文本返回.
type ReadFileResponse struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Content  string `json:"content"`
}

// AppVersionResponse get-app-version 响应.
type AppVersionResponse struct {
	Version    string `json:"version"`
	APIVersion string `json:"apiVersion"`
}

// AckResponse 无返回值请求的确认.
type AckResponse struct {
	OK bool `json:"ok"`
}

// ErrorResponse 统一错误体，Error 为错误类别.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
