package services

import "errors"

// Common service errors
var (
	ErrInvalidCredentials = errors.New("email hoặc mật khẩu không đúng")
	ErrPasswordMismatch   = errors.New("mật khẩu xác nhận không khớp")
	ErrDuplicateEmail     = errors.New("email đã được đăng ký")
	ErrMissingFields      = errors.New("vui lòng nhập đầy đủ thông tin")
	ErrUploadFailure      = errors.New("không thể tải ảnh lên")
	ErrUnsupportedImage   = errors.New("định dạng ảnh không được hỗ trợ")
	ErrExportRender       = errors.New("không thể tạo báo cáo")
	ErrNoData             = errors.New("chưa có dữ liệu đánh giá")
	ErrUnsupportedFormat  = errors.New("định dạng báo cáo không được hỗ trợ")
)
