package resolvers

import "dappstore.GO/service/search"

func defaultPageSize(p int32) int {
	if p > 0 {
		return int(p)
	}
	return search.RecordsPerPage
}

func defaultCurrentPage(p int32) int {
	if p > 0 {
		return int(p)
	}
	return 1
}
