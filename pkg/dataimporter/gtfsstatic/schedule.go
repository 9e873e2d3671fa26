package gtfsstatic

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"

	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/transit"
	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/util"
)

// Schedule holds the raw GTFS Schedule records the detour engine cares about.
// Everything else in the dataset (calendars, fares, frequencies) is skipped.
type Schedule struct {
	Stops     []Stop
	Trips     []Trip
	StopTimes []StopTime
	Shapes    []Shape
}

var scheduleFiles = []string{"stops.txt", "trips.txt", "stop_times.txt", "shapes.txt"}

// Load reads a GTFS Schedule dataset from either a zip archive or an
// extracted directory.
func (s *Schedule) Load(path string) error {
	// Allow us to ignore those naughty records that have missing columns
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.FieldsPerRecord = -1
		return r
	})

	if strings.HasSuffix(path, ".zip") {
		return s.loadZip(path)
	}

	return s.loadDirectory(path)
}

func (s *Schedule) loadZip(path string) error {
	body, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	archive, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return err
	}

	for _, zipFile := range archive.File {
		if !slices.Contains(scheduleFiles, zipFile.Name) {
			continue
		}

		fileReader, err := zipFile.Open()
		if err != nil {
			return err
		}

		err = s.parseFile(zipFile.Name, fileReader)
		fileReader.Close()

		if err != nil {
			return err
		}
	}

	return nil
}

func (s *Schedule) loadDirectory(path string) error {
	for _, fileName := range scheduleFiles {
		file, err := os.Open(filepath.Join(path, fileName))
		if err != nil {
			if os.IsNotExist(err) {
				log.Info().Str("file", fileName).Msg("Dataset file missing, skipping")
				continue
			}

			return err
		}

		err = s.parseFile(fileName, file)
		file.Close()

		if err != nil {
			return err
		}
	}

	return nil
}

func (s *Schedule) parseFile(fileName string, reader io.Reader) error {
	fileMap := map[string]interface{}{
		"stops.txt":      &s.Stops,
		"trips.txt":      &s.Trips,
		"stop_times.txt": &s.StopTimes,
		"shapes.txt":     &s.Shapes,
	}

	destination, exists := fileMap[fileName]
	if !exists {
		return nil
	}

	log.Info().Str("file", fileName).Msg("Loading file")

	if err := gocsv.Unmarshal(reader, destination); err != nil {
		log.Error().Str("file", fileName).Err(err).Msg("Failed to parse csv file")
		return err
	}

	return nil
}

// LoadReferenceData loads a GTFS Schedule dataset and reduces it to the
// lookup tables the detour engine consumes.
func LoadReferenceData(path string) (*transit.ReferenceData, error) {
	schedule := Schedule{}
	if err := schedule.Load(path); err != nil {
		return nil, err
	}

	reference := &transit.ReferenceData{
		Shapes:      map[string][]transit.Location{},
		Trips:       map[string]transit.TripInfo{},
		RouteShapes: map[string][]string{},
		RouteStops:  map[string][]string{},
	}

	// Shape points arrive in any order so sort per shape before assembling
	// the polylines
	slices.SortStableFunc(schedule.Shapes, func(a, b Shape) int {
		if a.ID != b.ID {
			return strings.Compare(a.ID, b.ID)
		}

		return a.Sequence - b.Sequence
	})

	for _, point := range schedule.Shapes {
		reference.Shapes[point.ID] = append(reference.Shapes[point.ID], transit.Location{
			Latitude:  point.Latitude,
			Longitude: point.Longitude,
		})
	}

	for _, trip := range schedule.Trips {
		reference.Trips[trip.ID] = transit.TripInfo{
			RouteID:     trip.RouteID,
			DirectionID: trip.DirectionID,
		}

		if trip.ShapeID != "" && !util.ContainsString(reference.RouteShapes[trip.RouteID], trip.ShapeID) {
			reference.RouteShapes[trip.RouteID] = append(reference.RouteShapes[trip.RouteID], trip.ShapeID)
		}
	}

	for _, stop := range schedule.Stops {
		// Station parents carry no platform of their own
		if stop.Type != "" && stop.Type != "0" {
			continue
		}

		reference.Stops = append(reference.Stops, transit.Stop{
			PrimaryIdentifier: stop.ID,
			Code:              stop.Code,
			Name:              stop.Name,

			Location: transit.Location{
				Latitude:  stop.Latitude,
				Longitude: stop.Longitude,
			},
		})
	}

	slices.SortStableFunc(schedule.StopTimes, func(a, b StopTime) int {
		if a.TripID != b.TripID {
			return strings.Compare(a.TripID, b.TripID)
		}

		return a.StopSequence - b.StopSequence
	})

	for _, stopTime := range schedule.StopTimes {
		trip, exists := reference.Trips[stopTime.TripID]
		if !exists {
			continue
		}

		reference.RouteStops[trip.RouteID] = append(reference.RouteStops[trip.RouteID], stopTime.StopID)
	}

	for routeID, stopIDs := range reference.RouteStops {
		reference.RouteStops[routeID] = util.RemoveDuplicateStrings(stopIDs, []string{})
	}

	log.Info().
		Int("shapes", len(reference.Shapes)).
		Int("trips", len(reference.Trips)).
		Int("routes", len(reference.RouteShapes)).
		Int("stops", len(reference.Stops)).
		Msg("Loaded reference dataset")

	return reference, nil
}
