package model

// Settings are stored as key/value rows and served to clients as a flat map.
type Settings map[string]string

// SettingsUpdateRequest accepts arbitrary setting keys plus the logo
// replacement controls. Logo is a base64 data URI.
type SettingsUpdateRequest struct {
	Logo       string   `json:"logo"`
	RemoveLogo bool     `json:"remove_logo"`
	Values     Settings `json:"-"`
}

const (
	SettingRestaurantName        = "restaurant_name"
	SettingRestaurantDescription = "restaurant_description"
	SettingCurrency              = "currency"
	SettingLogoURL               = "logo_url"
)

// DefaultSettings seeds a fresh installation.
func DefaultSettings() Settings {
	return Settings{
		SettingRestaurantName:        "Gümüş Pastanesi",
		SettingRestaurantDescription: "1985'ten beri taze lezzetler",
		SettingCurrency:              "₺",
		SettingLogoURL:               "",
	}
}
