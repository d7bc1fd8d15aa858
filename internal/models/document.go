package models

import "gorm.io/datatypes"

// Document is one stored document addressed by (collection, key).
type Document struct {
	Collection string         `gorm:"primaryKey;type:text;comment:集合名称"`
	Key        string         `gorm:"primaryKey;type:text;comment:文档键"`
	Data       datatypes.JSON `gorm:"type:jsonb;not null;comment:文档内容"`
}

func (Document) TableName() string {
	return "documents"
}
