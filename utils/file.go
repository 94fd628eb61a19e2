package utils

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// FileProgress 文件读取进度
type FileProgress struct {
	// Loaded 已读取字节数
	Loaded int64
	// Total 总字节数
	Total int64
	// Percentage 进度百分比（0-100）
	Percentage int
}

// pdfMagic PDF 文件头（%PDF-）
var pdfMagic = []byte("%PDF-")

// IsPDF 检查数据是否为 PDF 内容
//
// 按文件头魔数判断，不信任扩展名。
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, pdfMagic)
}

// ReadFileWithProgress 读取文件并回调进度（支持大文件）
//
// 示例：
//
//	data, err := ReadFileWithProgress("document.pdf", func(p FileProgress) {
//	    fmt.Printf("Progress: %d%%\n", p.Percentage)
//	})
func ReadFileWithProgress(filePath string, onProgress func(FileProgress)) ([]byte, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file failed: %w", err)
	}
	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("get file info failed: %w", err)
	}
	fileSize := fileInfo.Size()
	if fileSize == 0 {
		return []byte{}, nil
	}

	data := make([]byte, fileSize)
	var offset int64
	buffer := make([]byte, 64*1024)

	for offset < fileSize {
		n, err := file.Read(buffer)
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read file failed: %w", err)
		}
		if n == 0 {
			break
		}

		copy(data[offset:], buffer[:n])
		offset += int64(n)

		if onProgress != nil {
			onProgress(FileProgress{
				Loaded:     offset,
				Total:      fileSize,
				Percentage: int((offset * 100) / fileSize),
			})
		}
	}

	return data[:offset], nil
}
