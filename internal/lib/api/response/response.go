package response

type Response struct {
	Status string `json:"status"`
	Err    string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

const (
	StatusOk    = "OK"
	StatusError = "Error"
)

func Ok(data any) Response {
	return Response{
		Status: StatusOk,
		Data:   data,
	}
}

func Error(msg string) Response {
	return Response{
		Status: StatusError,
		Err:    msg,
	}
}
