package models

type Category struct {
	Name          string
	SubCategories []string
}
