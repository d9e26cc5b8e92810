package main

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/common-nighthawk/go-figure"
	bannercolor "github.com/fatih/color"
	"github.com/drought-guardian/drought-vis-poc/internal/geoserver"
	"github.com/drought-guardian/drought-vis-poc/internal/notification"
	"github.com/drought-guardian/drought-vis-poc/internal/pipeline"
	"github.com/drought-guardian/drought-vis-poc/internal/properties"
	"github.com/joho/godotenv"
)

func printBanner() {
	figure1 := figure.NewFigure("Drought", "isometric1", true)
	figure2 := figure.NewFigure("Vis", "isometric1", true)
	bannercolor.Cyan(figure1.String())
	bannercolor.Cyan(figure2.String())
	fmt.Println()
}

func readLine(reader *bufio.Reader, prompt string) string {
	fmt.Printf("\033[34m%s\033[0m", prompt)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func newPublisher() (*geoserver.Publisher, error) {
	return geoserver.NewPublisher(
		properties.GeoServerURL(),
		properties.GeoServerUser(),
		properties.GeoServerPassword(),
	)
}

func initCLI() {
	defer func() {
		if r := recover(); r != nil {
			pc, file, line, ok := runtime.Caller(3)
			var location string
			if ok {
				fn := runtime.FuncForPC(pc)
				location = fmt.Sprintf("%s:%d in %s", file, line, fn.Name())
			} else {
				location = "Unknown location"
			}

			fmt.Printf("\n\033[31mPANIC: %v\033[0m\n", r)
			fmt.Printf("\033[31mLocation: %s\033[0m\n", location)
			fmt.Printf("\033[31mExiting...\033[0m\n")

			stack := debug.Stack()
			errMessage := fmt.Sprintf("Drought Vis CLI panic:\n\n%v\n\nLocation: %s\n\nStack trace:\n%s", r, location, stack)
			if err := notification.SendDiscordErrorNotification(errMessage); err != nil {
				fmt.Printf("\033[31mFailed to send notification: %s\033[0m\n", err.Error())
			}
		}
	}()
	printBanner()

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Println("\033[34m===================\033[0m")
		fmt.Println("\033[34m1. Process MOD11A2 temperature directory\033[0m")
		fmt.Println("\033[34m2. Process MOD13A3 vegetation-index directory\033[0m")
		fmt.Println("\033[34m3. Publish outputs to GeoServer\033[0m")
		fmt.Println("\033[34m4. Clean GeoServer workspace\033[0m")
		fmt.Println("\033[34m5. Exit\033[0m")
		fmt.Println("\033[34mEnter your choice:\033[0m")

		var choice int
		if _, err := fmt.Scan(&choice); err != nil {
			fmt.Printf("\n\033[31mInvalid input. Please enter a number.\033[0m\n")
			fmt.Scanln()
			continue
		}
		fmt.Scanln()

		switch choice {
		case 1:
			fmt.Println("\033[33m\nWarning:\033[0m")
			fmt.Println("\033[33m- The directory must contain LST/Day, LST/Night, QC/Day and QC/Night subfolders.\033[0m")
			fmt.Println("\033[33m- Province and city shapefile paths come from PROVINCE_SHP_PATH and CITY_SHP_PATH.\n\033[0m")

			baseDir := readLine(reader, "Enter the MOD11A2 base directory: ")
			if baseDir == "" {
				fmt.Printf("\n\033[31mNo directory given.\033[0m\n")
				continue
			}
			if err := pipeline.RunLST(baseDir); err != nil {
				fmt.Printf("\n\033[31mError processing %s: %s\033[0m\n", baseDir, err.Error())
				notification.SendDiscordErrorNotification(fmt.Sprintf("Drought Vis CLI\n\nError processing %s: %s", baseDir, err.Error()))
				continue
			}
			fmt.Printf("\n\033[32mTemperature batch finished!\033[0m\n")
			notification.SendDiscordSuccessNotification(fmt.Sprintf("Drought Vis CLI\n\nTemperature batch finished for %s", baseDir))
		case 2:
			inputDir := readLine(reader, "Enter the NDVI input directory: ")
			outputDir := readLine(reader, "Enter the output directory: ")
			if inputDir == "" || outputDir == "" {
				fmt.Printf("\n\033[31mBoth directories are required.\033[0m\n")
				continue
			}
			if err := pipeline.RunNDVI(inputDir, outputDir); err != nil {
				fmt.Printf("\n\033[31mError processing NDVI: %s\033[0m\n", err.Error())
				notification.SendDiscordErrorNotification(fmt.Sprintf("Drought Vis CLI\n\nError processing NDVI: %s", err.Error()))
				continue
			}
			fmt.Printf("\n\033[32mNDVI batch finished!\033[0m\n")
			notification.SendDiscordSuccessNotification("Drought Vis CLI\n\nNDVI batch finished")
		case 3:
			rootDir := readLine(reader, "Enter the directory of rasters to publish: ")
			if rootDir == "" {
				fmt.Printf("\n\033[31mNo directory given.\033[0m\n")
				continue
			}
			cleanAnswer := readLine(reader, "Clean the workspace first? (y/N): ")

			publisher, err := newPublisher()
			if err != nil {
				fmt.Printf("\n\033[31m%s\033[0m\n", err.Error())
				return
			}
			workspace := properties.GeoServerWorkspace()
			cleanFirst := strings.EqualFold(cleanAnswer, "y")
			if err := geoserver.BatchPublish(publisher, rootDir, workspace, cleanFirst); err != nil {
				fmt.Printf("\n\033[31mError publishing: %s\033[0m\n", err.Error())
				continue
			}
			fmt.Printf("\n\033[32mPublishing finished!\033[0m\n")
		case 4:
			publisher, err := newPublisher()
			if err != nil {
				fmt.Printf("\n\033[31m%s\033[0m\n", err.Error())
				return
			}
			if err := publisher.CleanWorkspace(properties.GeoServerWorkspace()); err != nil {
				fmt.Printf("\n\033[31mError cleaning workspace: %s\033[0m\n", err.Error())
			}
		case 5:
			println("Exiting...")
			return
		default:
			println("Invalid choice. Please try again.")
		}
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		if err := godotenv.Load("../.env"); err != nil {
			fmt.Printf("\033[33mNo .env file found, relying on the environment\033[0m\n")
		}
	}

	initCLI()
}
