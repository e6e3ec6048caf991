package productiondto

// FileCreateInput metadata của một file đã upload xong
type FileCreateInput struct {
	ProjectID   string `json:"projectId" validate:"required" transform:"str_objectid"`
	Type        string `json:"type" validate:"required,oneof=RAW EDITED OTHER"`
	Name        string `json:"name" validate:"required,max=500"`
	Size        int64  `json:"size" validate:"gte=0"`
	ContentType string `json:"contentType,omitempty"`
	URL         string `json:"url,omitempty"`
	StoragePath string `json:"storagePath" validate:"required"`
	BatchID     string `json:"batchId,omitempty"`
}

// FileUpdateInput cập nhật metadata file
type FileUpdateInput struct {
	Name string `json:"name,omitempty" validate:"omitempty,max=500"`
	URL  string `json:"url,omitempty"`
}

// FileReviewInput duyệt hoặc từ chối một file
type FileReviewInput struct {
	Status string `json:"status" validate:"required,oneof=APPROVED REJECTED"`
	Note   string `json:"note,omitempty"`
}
