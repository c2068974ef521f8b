package serverutils

// BaseResponse is the envelope every /api/v1 endpoint answers with.
type BaseResponse struct {
	Success bool        `json:"success"`
	Code    int         `json:"code"`
	ErrCode string      `json:"error_code,omitempty"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func SuccessResponse(message string, data interface{}) BaseResponse {
	return BaseResponse{
		Success: true,
		Code:    200,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(code int, message string) BaseResponse {
	return BaseResponse{
		Success: false,
		Code:    code,
		Message: message,
	}
}
