package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// runEDA reads the dataset metadata CSV, prints a per-subject summary
// and plots a subject-age histogram next to the input data.
func runEDA() {
	subjects, err := readSubjects()
	if err != nil {
		panic(err)
	}

	totalSlices := 0
	for _, s := range subjects {
		totalSlices += s.Slices
	}
	fmt.Printf("Subjects: %v, total slices: %v\n", len(subjects), totalSlices)

	fname := fmt.Sprintf("%v/metadata.csv", DataPath)
	f, err := os.Open(fname)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	df := dataframe.ReadCSV(f, dataframe.HasHeader(true))
	age := df.Col("age").Float()

	p, err := plot.New()
	if err != nil {
		panic(err)
	}

	v := make(plotter.Values, len(age))
	for i := 0; i < len(age); i++ {
		v[i] = age[i]
	}

	h, err := plotter.NewHist(v, 10)
	if err != nil {
		panic(err)
	}
	p.Title.Text = "Subject Age Histogram"
	p.Add(h)

	if err := p.Save(4*vg.Inch, 4*vg.Inch, fmt.Sprintf("%v/age-histo.png", DataPath)); err != nil {
		panic(err)
	}
}

// Subject is one row of the dataset metadata.
type Subject struct {
	Id     string
	Age    int
	Slices int
}

func readSubjects() ([]Subject, error) {
	fname := fmt.Sprintf("%v/metadata.csv", DataPath)
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	df := dataframe.ReadCSV(f, dataframe.HasHeader(true)).Select([]string{"subject", "age", "num_slices"})
	ids := df.Col("subject").Records()
	ages := df.Col("age").Records()
	slices := df.Col("num_slices").Records()

	var subjects []Subject
	for i := 0; i < len(ids); i++ {
		age, err := strconv.Atoi(ages[i])
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(slices[i])
		if err != nil {
			return nil, err
		}

		subjects = append(subjects, Subject{ids[i], age, n})
	}

	return subjects, nil
}
