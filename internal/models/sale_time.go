package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// 促销时间在接口上的字面格式（例如 12:01 PM 16 April 2019）
const (
	// SaleTimeOutputLayout 输出格式（小时与日期补零）
	SaleTimeOutputLayout = "03:04 PM 02 January 2006"
	// SaleTimeInputLayout 解析格式（兼容不补零的输入）
	SaleTimeInputLayout = "3:04 PM 2 January 2006"
)

// SaleTime 促销时间点，接口上使用固定字面格式
type SaleTime struct {
	time.Time
}

// NewSaleTime 从 time.Time 创建促销时间
func NewSaleTime(t time.Time) SaleTime {
	return SaleTime{Time: t}
}

// ParseSaleTime 按接口格式解析促销时间
func ParseSaleTime(value string) (SaleTime, error) {
	t, err := time.Parse(SaleTimeInputLayout, value)
	if err != nil {
		return SaleTime{}, err
	}
	return SaleTime{Time: t}, nil
}

// MarshalJSON 按接口格式输出
func (st SaleTime) MarshalJSON() ([]byte, error) {
	if st.Time.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(st.Time.Format(SaleTimeOutputLayout))
}

// UnmarshalJSON 按接口格式解析，允许 null
func (st *SaleTime) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		st.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseSaleTime(s)
	if err != nil {
		return err
	}
	*st = parsed
	return nil
}

// Value 用于数据库写入
func (st SaleTime) Value() (driver.Value, error) {
	if st.Time.IsZero() {
		return nil, nil
	}
	return st.Time, nil
}

// Scan 用于数据库读取
func (st *SaleTime) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		st.Time = time.Time{}
		return nil
	case time.Time:
		st.Time = v
		return nil
	case []byte:
		return st.scanString(string(v))
	case string:
		return st.scanString(v)
	default:
		return fmt.Errorf("unsupported sale time source: %T", value)
	}
}

// GormDataType 指定数据库列类型
func (SaleTime) GormDataType() string {
	return "time"
}

func (st *SaleTime) scanString(value string) error {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			st.Time = t
			return nil
		}
	}
	return fmt.Errorf("unsupported sale time literal: %q", value)
}
