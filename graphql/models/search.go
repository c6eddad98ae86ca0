package models

type DAppPage struct {
	Items      []*DApp
	TotalCount int32
	PageInfo   *PageInfo
	Message    *string
}

type PageInfo struct {
	PageSize    int32
	CurrentPage int32
	TotalPages  int32
}
