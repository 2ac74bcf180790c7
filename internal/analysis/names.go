package analysis

import (
	"fmt"
	"sort"
	"strings"
)

// genreSimilarPairs lists genre roots that read as near-duplicates when
// combined in a single cluster name.
var genreSimilarPairs = [][2]string{
	{"rap", "hip hop"},
	{"electronic", "edm"},
	{"rock", "metal"},
	{"pop", "dance pop"},
	{"r&b", "soul"},
	{"country", "folk"},
}

func genresSimilar(a, b string) bool {
	al, bl := strings.ToLower(a), strings.ToLower(b)
	if strings.Contains(al, bl) || strings.Contains(bl, al) {
		return true
	}
	for _, pair := range genreSimilarPairs {
		if (strings.Contains(al, pair[0]) && strings.Contains(bl, pair[1])) ||
			(strings.Contains(al, pair[1]) && strings.Contains(bl, pair[0])) {
			return true
		}
	}
	return false
}

// NameClusters builds one descriptive, unique name per cluster. Base names
// come from a priority cascade over genre, mood, artist, era, and context
// signals; clusters that land on the same base name are then differentiated
// by era, size, and profile character before falling back to numbering.
func NameClusters(clusterTracks [][]Track, profiles []AudioProfile, genres []GenreDistribution, themes ContextThemes) []string {
	n := len(clusterTracks)
	base := make([]string, n)
	assigned := make([]string, 0, n)
	for i := range clusterTracks {
		base[i] = baseClusterName(i, clusterTracks[i], profiles[i], genres[i], themes, assigned)
		assigned = append(assigned, base[i])
	}
	return dedupeNames(base, clusterTracks, profiles)
}

func baseClusterName(idx int, tracks []Track, profile AudioProfile, genres GenreDistribution, themes ContextThemes, siblingNames []string) string {
	if len(tracks) == 0 {
		return fmt.Sprintf("Cluster %d", idx+1)
	}

	// Genres covering at least 20% of the cluster, strongest first.
	var leadGenres []string
	for _, gc := range genres.Top(5) {
		if float64(gc.Count) >= float64(len(tracks))*0.2 {
			leadGenres = append(leadGenres, gc.Genre)
		}
	}

	var components []string
	if len(leadGenres) >= 2 && !genresSimilar(leadGenres[0], leadGenres[1]) {
		components = append(components, titleCase(leadGenres[0])+" & "+titleCase(leadGenres[1]))
	} else if len(leadGenres) >= 1 {
		components = append(components, titleCase(leadGenres[0]))
	}

	// When siblings already lead with the same genre, a bare genre name
	// will not distinguish this cluster.
	generic := false
	if len(components) > 0 {
		shared := 0
		for _, name := range siblingNames {
			if strings.Contains(name, components[0]) {
				shared++
			}
		}
		generic = shared >= 2
	}

	if len(components) == 0 || generic {
		mood := moodDescriptor(profile.Valence, profile.Energy)
		if len(components) > 0 {
			components[0] = mood + " " + components[0]
		} else {
			components = append(components, mood)
		}
	}

	if generic && len(components) > 0 {
		if profile.Tempo >= 120 || profile.Energy >= 0.66 {
			components[0] = "Energetic " + components[0]
		} else if profile.Tempo < 90 && profile.Energy < 0.33 {
			components[0] = "Mellow " + components[0]
		}
	}

	if artist, count := dominantArtist(tracks); float64(count) > float64(len(tracks))*0.5 {
		components = append(components, artist+"'s Style")
	}

	if years := releaseYears(tracks); len(years) > 0 {
		minY, maxY := yearBounds(years)
		if maxY-minY < 15 {
			decade := (averageYear(years) / 10) * 10
			suffix := fmt.Sprintf("%ds", decade)
			duplicate := false
			for _, c := range components {
				if strings.Contains(c, fmt.Sprintf("%d", decade)) {
					duplicate = true
					break
				}
			}
			if !duplicate {
				components = append(components, suffix)
			}
		}
	}

	if len(components) == 0 || generic {
		if instr := instrumentationDescriptor(profile); instr != "" {
			if len(components) > 0 {
				components[0] = instr + " " + components[0]
			} else {
				components = append(components, instr)
			}
		}
	}

	if len(components) == 0 {
		if kw := firstContextKeyword(themes); kw != "" {
			components = append(components, titleCase(kw)+" Vibes")
		}
	}

	if len(components) == 0 {
		return fmt.Sprintf("Cluster %d", idx+1)
	}
	return strings.Join(components, " ")
}

// moodDescriptor maps the valence/energy plane onto a 3x3 mood grid.
func moodDescriptor(valence, energy float64) string {
	switch {
	case valence < 0.33:
		switch {
		case energy < 0.33:
			return "Melancholic"
		case energy < 0.66:
			return "Thoughtful"
		default:
			return "Intense"
		}
	case valence < 0.66:
		switch {
		case energy < 0.33:
			return "Relaxed"
		case energy < 0.66:
			return "Balanced"
		default:
			return "Energetic"
		}
	default:
		switch {
		case energy < 0.33:
			return "Peaceful"
		case energy < 0.66:
			return "Upbeat"
		default:
			return "Euphoric"
		}
	}
}

func instrumentationDescriptor(p AudioProfile) string {
	var parts []string
	if p.Acousticness > 0.6 {
		parts = append(parts, "Acoustic")
	} else if p.Acousticness < 0.3 {
		parts = append(parts, "Electronic")
	}
	if p.Instrumentalness > 0.5 {
		parts = append(parts, "Instrumental")
	}
	return strings.Join(parts, " & ")
}

func firstContextKeyword(themes ContextThemes) string {
	for _, category := range themeCategories {
		if kws := themes[category]; len(kws) > 0 {
			return kws[0]
		}
	}
	return ""
}

func dominantArtist(tracks []Track) (string, int) {
	counts := map[string]int{}
	for _, t := range tracks {
		if t.PrimaryArtist != "" {
			counts[t.PrimaryArtist]++
		}
	}
	best, bestCount := "", 0
	for artist, count := range counts {
		if count > bestCount || (count == bestCount && artist < best) {
			best, bestCount = artist, count
		}
	}
	return best, bestCount
}

func releaseYears(tracks []Track) []int {
	var years []int
	for _, t := range tracks {
		if y, ok := t.ReleaseYear(); ok {
			years = append(years, y)
		}
	}
	return years
}

func yearBounds(years []int) (int, int) {
	minY, maxY := years[0], years[0]
	for _, y := range years {
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}
	return minY, maxY
}

func averageYear(years []int) int {
	sum := 0
	for _, y := range years {
		sum += y
	}
	return sum / len(years)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// dedupeNames resolves base-name collisions. Naming state lives entirely in
// locals so one analysis run never influences the next.
func dedupeNames(base []string, clusterTracks [][]Track, profiles []AudioProfile) []string {
	groups := map[string][]int{}
	for i, name := range base {
		groups[name] = append(groups[name], i)
	}

	final := make([]string, len(base))
	used := map[string]bool{}

	// Deterministic order over groups.
	groupNames := make([]string, 0, len(groups))
	for name := range groups {
		groupNames = append(groupNames, name)
	}
	sort.Strings(groupNames)

	for _, name := range groupNames {
		indices := groups[name]
		if len(indices) == 1 {
			final[indices[0]] = name
			used[name] = true
			continue
		}

		remaining := differentiateByEra(indices, name, clusterTracks, final, used)
		if len(remaining) > 0 {
			remaining = differentiateBySize(remaining, name, clusterTracks, final, used)
		}
		if len(remaining) > 0 {
			remaining = differentiateByProfile(remaining, name, profiles, final, used)
		}
		for i, idx := range remaining {
			candidate := fmt.Sprintf("%s Group %d", name, i+1)
			for counter := i + 1; used[candidate]; counter++ {
				candidate = fmt.Sprintf("%s Group %d", name, counter+1)
			}
			final[idx] = candidate
			used[candidate] = true
		}
	}
	return final
}

func differentiateByEra(indices []int, baseName string, clusterTracks [][]Track, final []string, used map[string]bool) []int {
	type clusterYear struct {
		idx  int
		year float64
	}
	var withYears []clusterYear
	for _, idx := range indices {
		if years := releaseYears(clusterTracks[idx]); len(years) > 0 {
			sum := 0
			for _, y := range years {
				sum += y
			}
			withYears = append(withYears, clusterYear{idx: idx, year: float64(sum) / float64(len(years))})
		}
	}
	if len(withYears) < 2 {
		return indices
	}
	sort.Slice(withYears, func(a, b int) bool { return withYears[a].year < withYears[b].year })

	if len(withYears) == 2 {
		labels := []string{"Classic", "Modern"}
		for i, cy := range withYears {
			candidate := fmt.Sprintf("%s (%s)", baseName, labels[i])
			if !used[candidate] {
				final[cy.idx] = candidate
				used[candidate] = true
			}
		}
	} else {
		for i, cy := range withYears {
			decade := (int(cy.year) / 10) * 10
			candidate := fmt.Sprintf("%s (%ds)", baseName, decade)
			if used[candidate] {
				switch {
				case i == 0:
					candidate = fmt.Sprintf("%s (Early)", baseName)
				case i == len(withYears)-1:
					candidate = fmt.Sprintf("%s (Recent)", baseName)
				default:
					candidate = fmt.Sprintf("%s (Mid-Era)", baseName)
				}
			}
			original := candidate
			for counter := 2; used[candidate]; counter++ {
				candidate = fmt.Sprintf("%s %d", original, counter)
			}
			final[cy.idx] = candidate
			used[candidate] = true
		}
	}
	return unnamed(indices, final)
}

func differentiateBySize(indices []int, baseName string, clusterTracks [][]Track, final []string, used map[string]bool) []int {
	if len(indices) < 2 {
		return indices
	}
	sorted := append([]int(nil), indices...)
	sort.Slice(sorted, func(a, b int) bool {
		return len(clusterTracks[sorted[a]]) > len(clusterTracks[sorted[b]])
	})

	if len(sorted) == 2 {
		labels := []string{"Main", "Alternative"}
		for i, idx := range sorted {
			candidate := fmt.Sprintf("%s (%s)", baseName, labels[i])
			if !used[candidate] {
				final[idx] = candidate
				used[candidate] = true
			}
		}
	} else {
		for i, idx := range sorted {
			var candidate string
			switch i {
			case 0:
				candidate = fmt.Sprintf("%s (Primary)", baseName)
			case 1:
				candidate = fmt.Sprintf("%s (Secondary)", baseName)
			default:
				candidate = fmt.Sprintf("%s (%d tracks)", baseName, len(clusterTracks[idx]))
			}
			original := candidate
			for counter := 2; used[candidate]; counter++ {
				candidate = fmt.Sprintf("%s %d", original, counter)
			}
			final[idx] = candidate
			used[candidate] = true
		}
	}
	return unnamed(indices, final)
}

func differentiateByProfile(indices []int, baseName string, profiles []AudioProfile, final []string, used map[string]bool) []int {
	for _, idx := range indices {
		if final[idx] != "" {
			continue
		}
		p := profiles[idx]

		var descriptor string
		switch {
		case p.Energy > 0.7:
			descriptor = "Energetic"
		case p.Energy < 0.4:
			descriptor = "Calm"
		case p.Acousticness > 0.6:
			descriptor = "Acoustic"
		case p.Acousticness < 0.3:
			descriptor = "Electronic"
		case p.Valence > 0.7:
			descriptor = "Upbeat"
		case p.Valence < 0.3:
			descriptor = "Melancholic"
		case p.Danceability > 0.7:
			descriptor = "Danceable"
		case p.Instrumentalness > 0.5:
			descriptor = "Instrumental"
		case p.Tempo > 120:
			descriptor = "Uptempo"
		default:
			descriptor = "Downtempo"
		}

		candidate := fmt.Sprintf("%s (%s)", baseName, descriptor)
		original := candidate
		for counter := 2; used[candidate]; counter++ {
			candidate = fmt.Sprintf("%s %d", original, counter)
		}
		final[idx] = candidate
		used[candidate] = true
	}
	return unnamed(indices, final)
}

func unnamed(indices []int, final []string) []int {
	var remaining []int
	for _, idx := range indices {
		if final[idx] == "" {
			remaining = append(remaining, idx)
		}
	}
	return remaining
}
