package properties

import "os"

func RootPath() string {
	return os.Getenv("ROOT_PATH")
}

func ProvinceShapefilePath() string {
	return os.Getenv("PROVINCE_SHP_PATH")
}

func CityShapefilePath() string {
	return os.Getenv("CITY_SHP_PATH")
}

func GeoServerURL() string {
	return os.Getenv("GEOSERVER_URL")
}

func GeoServerUser() string {
	return os.Getenv("GEOSERVER_USER")
}

func GeoServerPassword() string {
	return os.Getenv("GEOSERVER_PASSWORD")
}

func GeoServerWorkspace() string {
	if ws := os.Getenv("GEOSERVER_WORKSPACE"); ws != "" {
		return ws
	}
	return "remote_sensing"
}

func DiscordErrorNotificationUrl() string {
	return os.Getenv("DISCORD_ERROR_NOTIFICATION_URL")
}

func DiscordSuccessNotificationUrl() string {
	return os.Getenv("DISCORD_SUCCESS_NOTIFICATION_URL")
}
