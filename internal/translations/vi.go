package translations

// GetVietnameseTranslations returns all Vietnamese text strings
func GetVietnameseTranslations() Translations {
	return Translations{
		CategoryFlagship:      "Petrolimex",
		CategoryPartner:       "Đối tác",
		CategoryFranchise:     "Nhượng quyền",
		CategoryNewInvestment: "Đầu tư mới",
		CategoryOther:         "Khác",

		StationsFound:   "Tìm thấy %d cửa hàng",
		NearestTo:       "Gần nhất với %s (%s)",
		LocationFound:   "Đã tìm thấy vị trí:",
		Address:         "Địa chỉ",
		Category:        "Loại",
		Distance:        "Khoảng cách",
		Price:           "Giá",
		PriceDifference: "Chênh lệch giá",
		Coordinates:     "Tọa độ",
		NotAvailable:    "N/A",

		SnapshotSaved:    "Đã lưu bản chụp %d với %d cửa hàng",
		NoSnapshots:      "Không có bản chụp nào trong cơ sở dữ liệu.",
		SnapshotsDeleted: "Đã xóa %d bản chụp cũ hơn %d ngày",

		LocationSubmitted: "Đã gửi vị trí của %s (%s)",
	}
}
