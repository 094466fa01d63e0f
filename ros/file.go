package ros

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// 这里是上传/解压协作方的最小实现：识别 .ros/.rosz 并交给核心已解压的 XML。

// Format 表示 roster 文件的封装格式。
type Format int

const (
	// Unknown indicates an unrecognized file.
	Unknown Format = iota
	// ROS is a plain roster XML document.
	ROS
	// ROSZ is a zip archive holding one roster document.
	ROSZ
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case ROS:
		return "ros"
	case ROSZ:
		return "rosz"
	default:
		return "unknown"
	}
}

// ErrUnsupportedFile 表示文件既不是 .ros 也不是 .rosz。
var ErrUnsupportedFile = errors.New("unsupported roster file type")

// Detect 优先根据内容的魔数判断格式，无法判断时退回到扩展名。
func Detect(filename string, data []byte) Format {
	if len(data) >= 4 && data[0] == 0x50 && data[1] == 0x4B && data[2] == 0x03 && data[3] == 0x04 {
		return ROSZ
	}
	head := bytes.TrimLeft(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")), " \t\r\n")
	if bytes.HasPrefix(head, []byte("<?xml")) || bytes.HasPrefix(head, []byte("<roster")) {
		return ROS
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".ros":
		return ROS
	case ".rosz":
		return ROSZ
	default:
		return Unknown
	}
}

// ReadFile 读取 path 并返回解压后的 roster XML。
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取 roster 文件 %s 失败: %w", path, err)
	}
	return Unpack(filepath.Base(path), data)
}

// Unpack returns the roster XML contained in data.
func Unpack(filename string, data []byte) ([]byte, error) {
	switch Detect(filename, data) {
	case ROS:
		return data, nil
	case ROSZ:
		return unzipFirst(data)
	default:
		return nil, ErrUnsupportedFile
	}
}

// unzipFirst 读取压缩包中的第一个文件（.rosz 只包含一份 .ros）。
func unzipFirst(data []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("打开 rosz 压缩包失败: %w", err)
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("打开压缩包内文件 %s 失败: %w", f.Name, err)
		}
		out, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("解压 %s 失败: %w", f.Name, err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("rosz 压缩包为空: %w", ErrUnsupportedFile)
}
