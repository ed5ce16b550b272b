// internal/app/selection/optimize/genetic.go
package optimize

import (
	"math/rand"
	"sort"

	"github.com/dalemusser/selecthub/internal/domain/models"
)

// individual is one candidate team, stored as sorted pool indices so equal
// member sets compare equal regardless of construction order.
type individual struct {
	members []int
	scores  teamScores
}

func (in *individual) key() string {
	b := make([]byte, 0, len(in.members)*3)
	for _, m := range in.members {
		b = append(b, byte(m>>16), byte(m>>8), byte(m))
	}
	return string(b)
}

// evolve runs the population-based search over the pool and returns the
// final population sorted best-first, plus per-generation statistics. The
// elite share survives each generation unchanged, so the best fitness in
// the stats is non-decreasing.
func evolve(rng *rand.Rand, pool []models.CandidateProfile, minSize, maxSize int, cons models.OptimizationConstraints, cfg Config) ([]individual, []models.GenerationStat) {
	popSize := cfg.PopulationSize
	pop := make([]individual, 0, popSize)
	for i := 0; i < popSize; i++ {
		pop = append(pop, randomIndividual(rng, len(pool), minSize, maxSize))
	}

	score := func(in *individual) {
		team := make([]models.CandidateProfile, len(in.members))
		for i, m := range in.members {
			team[i] = pool[m]
		}
		in.scores = scoreTeam(team, cons)
	}
	for i := range pop {
		score(&pop[i])
	}

	eliteCount := int(float64(popSize) * cfg.EliteFraction)
	if eliteCount < 1 {
		eliteCount = 1
	}

	stats := make([]models.GenerationStat, 0, cfg.Generations)
	for gen := 0; gen < cfg.Generations; gen++ {
		sortByFitness(pop)
		stats = append(stats, generationStat(gen, pop))

		next := make([]individual, 0, popSize)
		next = append(next, pop[:eliteCount]...)

		for len(next) < popSize {
			a := tournament(rng, pop)
			b := tournament(rng, pop)
			child := crossover(rng, a, b, len(pool))
			if rng.Float64() < cfg.MutationRate {
				mutate(rng, &child, len(pool))
			}
			score(&child)
			next = append(next, child)
		}
		pop = next
	}

	sortByFitness(pop)
	return pop, stats
}

func sortByFitness(pop []individual) {
	sort.SliceStable(pop, func(i, j int) bool {
		return pop[i].scores.fitness > pop[j].scores.fitness
	})
}

func generationStat(gen int, pop []individual) models.GenerationStat {
	var sum float64
	for i := range pop {
		sum += pop[i].scores.fitness
	}
	return models.GenerationStat{
		Generation:  gen + 1,
		BestFitness: pop[0].scores.fitness,
		MeanFitness: sum / float64(len(pop)),
	}
}

// randomIndividual draws a team of random valid size without repeats.
func randomIndividual(rng *rand.Rand, poolSize, minSize, maxSize int) individual {
	size := minSize
	if maxSize > minSize {
		size += rng.Intn(maxSize - minSize + 1)
	}
	if size > poolSize {
		size = poolSize
	}

	perm := rng.Perm(poolSize)
	members := append([]int(nil), perm[:size]...)
	sort.Ints(members)
	return individual{members: members}
}

// tournament picks the better of two random individuals.
func tournament(rng *rand.Rand, pop []individual) individual {
	a := &pop[rng.Intn(len(pop))]
	b := &pop[rng.Intn(len(pop))]
	if b.scores.fitness > a.scores.fitness {
		return *b
	}
	return *a
}

// crossover takes the first half of parent a's members and fills the rest
// from parent b, skipping duplicates; random pool members pad any gap left
// when the parents overlap heavily.
func crossover(rng *rand.Rand, a, b individual, poolSize int) individual {
	size := len(a.members)
	taken := make(map[int]bool, size)
	members := make([]int, 0, size)

	for _, m := range a.members[:(size+1)/2] {
		members = append(members, m)
		taken[m] = true
	}
	for _, m := range b.members {
		if len(members) == size {
			break
		}
		if !taken[m] {
			members = append(members, m)
			taken[m] = true
		}
	}
	for len(members) < size {
		m := rng.Intn(poolSize)
		if !taken[m] {
			members = append(members, m)
			taken[m] = true
		}
	}

	sort.Ints(members)
	return individual{members: members}
}

// mutate swaps one random member for a random non-member.
func mutate(rng *rand.Rand, in *individual, poolSize int) {
	if len(in.members) == poolSize {
		return
	}
	taken := make(map[int]bool, len(in.members))
	for _, m := range in.members {
		taken[m] = true
	}

	slot := rng.Intn(len(in.members))
	for {
		m := rng.Intn(poolSize)
		if !taken[m] {
			in.members[slot] = m
			break
		}
	}
	sort.Ints(in.members)
}
